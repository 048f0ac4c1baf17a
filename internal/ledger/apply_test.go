package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/fx"
)

func TestApply_UnknownKindIsNoOp(t *testing.T) {
	s := stateWith(bolts(3))

	next, err := Apply(s, Action{Kind: "REFUND", Actor: admin, At: now, Audit: json.RawMessage(`{"x":1}`)})

	require.NoError(t, err)
	assert.Same(t, s, next)
	assert.Empty(t, next.Logs)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := stateWith(bolts(10))
	s.Accounts = append(s.Accounts, domain.Account{Username: "aziz", Role: domain.RoleSeller})

	next := mustApply(t, s, seller, Sell{Location: domain.LocationWarehouse, ProductID: "bolt-m8", Quantity: dec("4"), Unit: domain.UnitPiece, Seller: "aziz"})

	assert.Equal(t, int64(10), s.Warehouse[0].Qty)
	assert.True(t, s.Accounts[0].BalanceBase.IsZero())
	assert.Equal(t, int64(6), next.Warehouse[0].Qty)
	assertDec(t, "6000", next.Accounts[0].BalanceBase)
}

func TestApply_AppendsAuditOnSuccess(t *testing.T) {
	audit := json.RawMessage(`{"who":"owner","what":"rate"}`)

	s, err := Apply(Empty(), NewAction(admin, now, SetExchangeRate{Rate: fx.NewRate(dec("12650.5"))}, audit))
	require.NoError(t, err)
	require.Len(t, s.Logs, 1)
	assert.JSONEq(t, string(audit), string(s.Logs[0]))

	failed, err := Apply(s, NewAction(admin, now, SetExchangeRate{Rate: fx.NewRate(dec("-1"))}, audit))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, failed.Logs, 1)

	cleared := mustApply(t, s, admin, SetExchangeRate{Rate: fx.NoRate})
	assert.False(t, cleared.ExchangeRate.Valid)
	assert.Len(t, cleared.Logs, 1)
}

func TestApply_RejectsAuditThatIsNotJSON(t *testing.T) {
	s := stateWith(bolts(5))
	adjust := AdjustQty{Location: domain.LocationWarehouse, ProductID: "bolt-m8", Delta: dec("1"), Unit: domain.UnitPiece}

	next, err := Apply(s, NewAction(admin, now, adjust, json.RawMessage("not json")))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Same(t, s, next)

	ok := mustApply(t, s, admin, adjust)
	_, err = Dehydrate(ok)
	require.NoError(t, err)
}

func TestApply_Permissions(t *testing.T) {
	manager := domain.Actor{
		Username:     "manager",
		Role:         domain.RoleSeller,
		Capabilities: domain.NewCapabilities(domain.CapManageAccounts),
	}
	promote := domain.RoleAdmin

	s := Empty()
	s.Accounts = []domain.Account{
		{Username: "owner", Role: domain.RoleAdmin},
		{Username: "aziz", Role: domain.RoleSeller},
	}

	tests := []struct {
		name    string
		actor   domain.Actor
		payload Payload
		wantErr error
	}{
		{name: "seller cannot set rate", actor: seller, payload: SetExchangeRate{Rate: fx.NewRate(dec("1"))}, wantErr: domain.ErrPermissionDenied},
		{name: "seller cannot add accounts", actor: seller, payload: AddAccount{Username: "new", Role: domain.RoleSeller}, wantErr: domain.ErrPermissionDenied},
		{name: "manager adds seller", actor: manager, payload: AddAccount{Username: "new", Role: domain.RoleSeller}},
		{name: "manager cannot add admin", actor: manager, payload: AddAccount{Username: "new", Role: domain.RoleAdmin}, wantErr: domain.ErrPermissionDenied},
		{name: "manager cannot promote", actor: manager, payload: EditAccount{Username: "aziz", Role: &promote}, wantErr: domain.ErrPermissionDenied},
		{name: "manager cannot delete admin", actor: manager, payload: DeleteAccount{Username: "owner"}, wantErr: domain.ErrPermissionDenied},
		{name: "manager deletes seller", actor: manager, payload: DeleteAccount{Username: "aziz"}},
		{name: "admin adds admin", actor: admin, payload: AddAccount{Username: "partner", Role: domain.RoleAdmin}},
		{name: "duplicate account", actor: admin, payload: AddAccount{Username: "aziz", Role: domain.RoleSeller}, wantErr: domain.ErrAccountExists},
		{name: "anonymous actor", actor: domain.Actor{}, payload: baseCredit(10), wantErr: domain.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Apply(s, NewAction(tt.actor, now, tt.payload, nil))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Same(t, s, next)
				return
			}
			require.NoError(t, err)
			assert.NotSame(t, s, next)
		})
	}
}

func TestApply_PayloadShape(t *testing.T) {
	s := stateWith(bolts(5))

	next, err := Apply(s, NewAction(admin, now, &AdjustQty{Location: domain.LocationWarehouse, ProductID: "bolt-m8", Delta: dec("1"), Unit: domain.UnitPiece}, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(6), next.Warehouse[0].Qty)

	_, err = Apply(s, Action{Kind: KindSell, Actor: admin, At: now, Payload: AdjustQty{}})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestApply_EditAccount(t *testing.T) {
	s := mustApply(t, Empty(), admin, AddAccount{Username: "aziz", DisplayName: "Aziz", Role: domain.RoleSeller})

	name := "Aziz K."
	s = mustApply(t, s, admin, EditAccount{Username: "aziz", DisplayName: &name})
	acc, ok := s.Account("aziz")
	require.True(t, ok)
	assert.Equal(t, name, acc.DisplayName)
	assert.Equal(t, domain.RoleSeller, acc.Role)

	_, err := Apply(s, NewAction(admin, now, EditAccount{Username: "ghost", DisplayName: &name}, nil))
	require.ErrorIs(t, err, domain.ErrNotFound)
}
