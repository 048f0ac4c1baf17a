package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/fx"
)

func convertCmd() *cobra.Command {
	var (
		amount   string
		currency string
		rate     string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an amount between BASE and FOREIGN",
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("rate: %w", err)
			}
			from := domain.Currency(currency)
			if !from.IsValid() {
				return fmt.Errorf("currency %q: %w", currency, domain.ErrInvalidCurrency)
			}

			to := domain.CurrencyBase
			if from == domain.CurrencyBase {
				to = domain.CurrencyForeign
			}
			m := domain.NewMoney(amt, from)
			out, err := fx.Convert(m, to, fx.NewRate(r))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", m, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount to convert")
	cmd.Flags().StringVar(&currency, "currency", string(domain.CurrencyForeign), "currency of --amount: BASE or FOREIGN")
	cmd.Flags().StringVar(&rate, "rate", "", "BASE units per one FOREIGN unit")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}
