// Package commands implements ledgerctl, an offline tool for ledger
// documents: replaying actions, summarizing and converting amounts.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/shop-ledger/internal/ledger"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and replay shop ledger documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(replayCmd(), summaryCmd(), convertCmd())
	return root
}

func Execute() error {
	root := newRoot()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// loadState reads a dehydrated document. An empty path yields an empty
// ledger.
func loadState(path string) (*ledger.State, error) {
	if path == "" {
		return ledger.Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	s, err := ledger.Hydrate(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}
