package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
)

func replayCmd() *cobra.Command {
	var (
		statePath   string
		actionsPath string
		outPath     string
		actorName   string
		role        string
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply a list of actions to a ledger document",
		Long: "Reads a JSON array of {type, payload, audit} envelopes and applies them in order.\n" +
			"Stops at the first rejected action. The resulting document is written to --out or stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := domain.NewActor(actorName, domain.Role(role))
			if !actor.Role.IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}

			s, err := loadState(statePath)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(actionsPath)
			if err != nil {
				return fmt.Errorf("read actions: %w", err)
			}
			var envelopes []ledger.Envelope
			if err := json.Unmarshal(raw, &envelopes); err != nil {
				return fmt.Errorf("parse actions: %w", err)
			}

			at := time.Now().UTC()
			for i, env := range envelopes {
				a, err := env.Action(actor, at)
				if err != nil {
					return fmt.Errorf("action %d (%s): %w", i, env.Type, err)
				}
				next, err := ledger.Apply(s, a)
				if err != nil {
					return fmt.Errorf("action %d (%s) rejected after %d applied: %w", i, env.Type, i, err)
				}
				s = next
			}

			body, err := ledger.Dehydrate(s)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(append(body, '\n'))
				return err
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "applied %d actions, wrote %s\n", len(envelopes), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "dehydrated ledger document (default: empty ledger)")
	cmd.Flags().StringVar(&actionsPath, "actions", "", "JSON array of action envelopes")
	cmd.Flags().StringVar(&outPath, "out", "", "write the resulting document here instead of stdout")
	cmd.Flags().StringVar(&actorName, "actor", "ledgerctl", "username recorded as the actor")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "actor role: ADMIN or SELLER")
	_ = cmd.MarkFlagRequired("actions")
	return cmd
}
