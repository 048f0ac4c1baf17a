package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/shop-ledger/internal/fx"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
)

func summaryCmd() *cobra.Command {
	var statePath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print stock valuation and outstanding credit",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadState(statePath)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), ledger.Summarize(s))
			return nil
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "dehydrated ledger document")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func printSummary(w io.Writer, sum ledger.Summary) {
	for _, v := range sum.Inventory {
		fmt.Fprintf(w, "%-10s %3d products  %s\n", v.Location, v.Products, formatTotal(v.Value, sum.HasRate))
	}
	for _, o := range sum.Credit {
		fmt.Fprintf(w, "%-10s %3d open      %s\n", o.Direction, o.Open, formatTotal(o.Remaining, sum.HasRate))
	}
	fmt.Fprintf(w, "accounts   %3d\n", sum.Accounts)
	if !sum.HasRate {
		fmt.Fprintln(w, "no exchange rate set: FOREIGN amounts are not included in totals")
	}
}

func formatTotal(t fx.MixedTotal, hasRate bool) string {
	if !hasRate {
		return t.TotalBase.String()
	}
	return t.TotalBase.String() + " / " + t.TotalForeign.String()
}
