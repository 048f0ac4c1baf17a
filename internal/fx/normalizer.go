// Package fx normalizes amounts between the BASE and FOREIGN currencies
// using the single exchange rate held by the ledger (BASE units per one
// FOREIGN unit).
package fx

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const (
	basePlaces    = 0
	foreignPlaces = 2
)

// NewRate wraps a rate value. Non-positive values produce an unusable rate.
func NewRate(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: v, Valid: true}
}

// NoRate is the absent exchange rate.
var NoRate = decimal.NullDecimal{}

// RateUsable reports whether the rate can convert FOREIGN amounts.
func RateUsable(rate decimal.NullDecimal) bool {
	return rate.Valid && rate.Decimal.IsPositive()
}

func roundFor(amount decimal.Decimal, c domain.Currency) decimal.Decimal {
	if c == domain.CurrencyForeign {
		return amount.Round(foreignPlaces)
	}
	return amount.Round(basePlaces)
}

// ToBase converts m to BASE. A FOREIGN amount without a usable rate converts
// to zero; it is never reinterpreted as BASE at face value.
func ToBase(m domain.Money, rate decimal.NullDecimal) domain.Money {
	switch m.Currency {
	case domain.CurrencyBase:
		return domain.NewMoney(m.Amount.Round(basePlaces), domain.CurrencyBase)
	case domain.CurrencyForeign:
		if !RateUsable(rate) {
			return domain.Zero(domain.CurrencyBase)
		}
		return domain.NewMoney(m.Amount.Mul(rate.Decimal).Round(basePlaces), domain.CurrencyBase)
	default:
		return domain.Zero(domain.CurrencyBase)
	}
}

// FromBase converts a BASE amount into target. FOREIGN results are rounded
// to two places, BASE results to whole units.
func FromBase(base domain.Money, target domain.Currency, rate decimal.NullDecimal) domain.Money {
	if target == domain.CurrencyForeign {
		if !RateUsable(rate) {
			return domain.Zero(domain.CurrencyForeign)
		}
		return domain.NewMoney(base.Amount.Div(rate.Decimal).Round(foreignPlaces), domain.CurrencyForeign)
	}
	return domain.NewMoney(base.Amount.Round(basePlaces), domain.CurrencyBase)
}

// Convert moves m into the target currency. Unlike ToBase it refuses to
// guess: a FOREIGN leg without a usable rate yields ErrRateUnavailable.
func Convert(m domain.Money, to domain.Currency, rate decimal.NullDecimal) (domain.Money, error) {
	if !m.Currency.IsValid() || !to.IsValid() {
		return domain.Money{}, fmt.Errorf("Convert: %s to %s: %w", m.Currency, to, domain.ErrInvalidCurrency)
	}
	if m.Currency == to {
		return domain.NewMoney(roundFor(m.Amount, to), to), nil
	}
	if !RateUsable(rate) {
		return domain.Money{}, fmt.Errorf("Convert: %s to %s: %w", m.Currency, to, domain.ErrRateUnavailable)
	}
	if to == domain.CurrencyBase {
		return ToBase(m, rate), nil
	}
	return FromBase(m, to, rate), nil
}

// MixedTotal is the result of summing amounts recorded in both currencies.
type MixedTotal struct {
	TotalBase    domain.Money   `json:"totalBase"`
	TotalForeign domain.Money   `json:"totalForeign"`
	Breakdown    []domain.Money `json:"breakdown"`
}

// SumMixed normalizes every item to BASE and sums. The FOREIGN total is
// derived from the BASE sum rather than by adding FOREIGN lines, so rounding
// is applied once. Breakdown holds the raw subtotal per currency present, BASE
// first.
func SumMixed(items []domain.Money, rate decimal.NullDecimal) MixedTotal {
	totalBase := decimal.Zero
	subtotals := map[domain.Currency]decimal.Decimal{}

	for _, item := range items {
		totalBase = totalBase.Add(ToBase(item, rate).Amount)
		subtotals[item.Currency] = subtotals[item.Currency].Add(item.Amount)
	}

	base := domain.NewMoney(totalBase, domain.CurrencyBase)
	result := MixedTotal{
		TotalBase:    base,
		TotalForeign: FromBase(base, domain.CurrencyForeign, rate),
		Breakdown:    []domain.Money{},
	}
	for _, c := range []domain.Currency{domain.CurrencyBase, domain.CurrencyForeign} {
		if sub, ok := subtotals[c]; ok {
			result.Breakdown = append(result.Breakdown, domain.NewMoney(sub, c))
		}
	}
	return result
}
