package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/fx"
)

var (
	now    = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	admin  = domain.NewActor("owner", domain.RoleAdmin)
	seller = domain.NewActor("aziz", domain.RoleSeller)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func cable(lengthQty string) domain.Product {
	p := domain.Product{
		ID:           "cable-3x2.5",
		Name:         "Cable 3x2.5",
		Location:     domain.LocationWarehouse,
		QuantityMode: domain.QuantityLengthBased,
		UnitPrice:    domain.Base(250000),
		PackLength:   dec("5"),
		LengthQty:    dec(lengthQty),
		CreatedAt:    now,
	}
	p.Qty = p.PacksFor(p.LengthQty)
	return p
}

func bolts(qty int64) domain.Product {
	return domain.Product{
		ID:           "bolt-m8",
		Name:         "Bolt M8",
		Location:     domain.LocationWarehouse,
		QuantityMode: domain.QuantityDiscrete,
		Qty:          qty,
		UnitPrice:    domain.Base(1500),
		CreatedAt:    now,
	}
}

func stateWith(products ...domain.Product) *State {
	s := Empty()
	for _, p := range products {
		if p.Location == domain.LocationStore {
			s.Store = append(s.Store, p)
		} else {
			s.Warehouse = append(s.Warehouse, p)
		}
	}
	return s
}

func withRate(s *State, rate string) *State {
	s.ExchangeRate = fx.NewRate(dec(rate))
	return s
}

func mustApply(t *testing.T, s *State, actor domain.Actor, p Payload) *State {
	t.Helper()
	next, err := Apply(s, NewAction(actor, now, p, nil))
	require.NoError(t, err)
	return next
}
