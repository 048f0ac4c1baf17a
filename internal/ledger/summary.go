package ledger

import (
	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/fx"
)

// Valuation is the priced stock of one location.
type Valuation struct {
	Location domain.Location `json:"location"`
	Products int             `json:"products"`
	Value    fx.MixedTotal   `json:"value"`
}

// Outstanding is the open credit balance in one direction.
type Outstanding struct {
	Direction domain.CreditDirection `json:"direction"`
	Open      int                    `json:"open"`
	Remaining fx.MixedTotal          `json:"remaining"`
}

type Summary struct {
	Inventory []Valuation   `json:"inventory"`
	Credit    []Outstanding `json:"credit"`
	Accounts  int           `json:"accounts"`
	HasRate   bool          `json:"hasRate"`
}

// StockValue prices the current stock of p. Length-tracked products are
// priced per pack, pro rata for a partial pack.
func StockValue(p domain.Product) domain.Money {
	return p.UnitPrice.Mul(packsIn(p, available(p)))
}

func Valuate(s *State, loc domain.Location) Valuation {
	list := s.products(loc)
	items := make([]domain.Money, 0, len(list))
	for _, p := range list {
		items = append(items, StockValue(p))
	}
	return Valuation{Location: loc, Products: len(list), Value: fx.SumMixed(items, s.ExchangeRate)}
}

// OutstandingFor sums the remaining balance of open credits in a direction.
func OutstandingFor(s *State, dir domain.CreditDirection) Outstanding {
	var items []domain.Money
	for _, c := range s.Credits {
		if c.Completed || c.Direction != dir {
			continue
		}
		items = append(items, c.Remaining)
	}
	return Outstanding{Direction: dir, Open: len(items), Remaining: fx.SumMixed(items, s.ExchangeRate)}
}

func Summarize(s *State) Summary {
	return Summary{
		Inventory: []Valuation{
			Valuate(s, domain.LocationWarehouse),
			Valuate(s, domain.LocationStore),
		},
		Credit: []Outstanding{
			OutstandingFor(s, domain.CreditReceivable),
			OutstandingFor(s, domain.CreditPayable),
		},
		Accounts: len(s.Accounts),
		HasRate:  fx.RateUsable(s.ExchangeRate),
	}
}
