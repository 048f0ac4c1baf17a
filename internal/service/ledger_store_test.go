package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/fx"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
	"github.com/josh-kwaku/shop-ledger/internal/metrics"
)

var (
	owner  = domain.NewActor("owner", domain.RoleAdmin)
	seller = domain.NewActor("aziz", domain.RoleSeller)
	at     = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
)

type storeFixture struct {
	store  *LedgerStore
	docs   *fakeDocs
	audit  *fakeAudit
	remote *fakeRemote
	calls  []string
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	f := &storeFixture{docs: newFakeDocs()}
	f.audit = &fakeAudit{calls: &f.calls}
	f.remote = &fakeRemote{calls: &f.calls}

	s, err := OpenLedgerStore(context.Background(), "shop-1", LedgerStoreDeps{
		Docs:     f.docs,
		Audit:    f.audit,
		Remote:   f.remote,
		Debounce: time.Hour,
		Logger:   slog.Default(),
		Metrics:  metrics.New(),
	})
	require.NoError(t, err)
	f.store = s
	return f
}

func setRate(rate int64, audit string) ledger.Action {
	var raw json.RawMessage
	if audit != "" {
		raw = json.RawMessage(audit)
	}
	return ledger.NewAction(owner, at, ledger.SetExchangeRate{Rate: fx.NewRate(decimal.NewFromInt(rate))}, raw)
}

func TestLedgerStore_SubmitOrder(t *testing.T) {
	f := newStoreFixture(t)
	before := f.store.State()

	next, err := f.store.Submit(context.Background(), setRate(12000, `{"msg":"rate set"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"remote", "audit"}, f.calls)
	assert.Same(t, next, f.store.State())
	assert.NotSame(t, before, next)
	assert.True(t, next.ExchangeRate.Decimal.Equal(decimal.NewFromInt(12000)))
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "SET_EXCHANGE_RATE", f.audit.entries[0].ActionKind)
	assert.Equal(t, "owner", f.audit.entries[0].Actor)
	assert.JSONEq(t, `{"msg":"rate set"}`, string(f.audit.entries[0].Body))
	require.Len(t, next.Logs, 1)

	require.NoError(t, f.store.Flush(context.Background()))
	doc, _ := f.docs.snapshot("shop-1")
	assert.Equal(t, int64(1), doc.Version)
}

func TestLedgerStore_RejectedActionNeverLeavesProcess(t *testing.T) {
	f := newStoreFixture(t)

	_, err := f.store.Submit(context.Background(), ledger.NewAction(seller, at, ledger.SetExchangeRate{Rate: fx.NewRate(decimal.NewFromInt(1))}, nil))
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.store.Submit(context.Background(), ledger.NewAction(owner, at, ledger.RecordPayment{CreditID: "missing", Amount: domain.Base(10)}, nil))
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.store.Submit(context.Background(), ledger.Action{Kind: "REFUND", Actor: owner, At: at})
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, f.calls)
}

func TestLedgerStore_RemoteFailureKeepsState(t *testing.T) {
	f := newStoreFixture(t)
	f.remote.err = errRemoteDown
	before := f.store.State()

	got, err := f.store.Submit(context.Background(), setRate(12000, ""))

	require.ErrorIs(t, err, errRemoteDown)
	assert.Same(t, before, got)
	assert.Same(t, before, f.store.State())
	assert.Equal(t, []string{"remote"}, f.calls)
	assert.Len(t, f.remote.writes, 0)
}

func TestLedgerStore_AuditFailureStillApplies(t *testing.T) {
	f := newStoreFixture(t)
	f.audit.err = errRemoteDown

	next, err := f.store.Submit(context.Background(), setRate(12000, ""))

	require.NoError(t, err)
	assert.True(t, next.ExchangeRate.Valid)
	assert.Equal(t, []string{"remote", "audit"}, f.calls)
}

func TestLedgerStore_DefaultAuditBody(t *testing.T) {
	f := newStoreFixture(t)

	_, err := f.store.Submit(context.Background(), setRate(12000, ""))
	require.NoError(t, err)

	require.Len(t, f.audit.entries, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(f.audit.entries[0].Body, &body))
	assert.Equal(t, "SET_EXCHANGE_RATE", body["type"])
}

func TestLedgerStore_DispatchIsLocalOnly(t *testing.T) {
	f := newStoreFixture(t)

	_, err := f.store.Dispatch(context.Background(), setRate(12000, ""))
	require.NoError(t, err)

	assert.Empty(t, f.calls)
	assert.True(t, f.store.State().ExchangeRate.Valid)
}

func TestLedgerStore_StaleUntilReload(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	_, err := f.store.Submit(ctx, setRate(12000, ""))
	require.NoError(t, err)
	require.NoError(t, f.store.Flush(ctx))

	other := ledger.Empty()
	other.ExchangeRate = fx.NewRate(decimal.NewFromInt(13000))
	body, err := ledger.Dehydrate(other)
	require.NoError(t, err)
	f.docs.bump("shop-1", body)

	_, err = f.store.Submit(ctx, setRate(12500, ""))
	require.NoError(t, err)
	require.ErrorIs(t, f.store.Flush(ctx), domain.ErrVersionConflict)
	assert.True(t, f.store.Stale())

	_, err = f.store.Submit(ctx, setRate(12600, ""))
	require.ErrorIs(t, err, domain.ErrStaleState)
	_, err = f.store.Dispatch(ctx, setRate(12600, ""))
	require.ErrorIs(t, err, domain.ErrStaleState)

	reloaded, err := f.store.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, f.store.Stale())
	assert.True(t, reloaded.ExchangeRate.Decimal.Equal(decimal.NewFromInt(13000)))
	assert.Equal(t, int64(2), f.store.Version())

	_, err = f.store.Submit(ctx, setRate(12700, ""))
	require.NoError(t, err)
	require.NoError(t, f.store.Flush(ctx))
	doc, _ := f.docs.snapshot("shop-1")
	assert.Equal(t, int64(3), doc.Version)
}

func TestManager_OpensOncePerScope(t *testing.T) {
	docs := newFakeDocs()
	m := NewManager(docs, nil, nil, time.Hour, slog.Default(), nil)
	ctx := context.Background()

	a, err := m.Open(ctx, "shop-1")
	require.NoError(t, err)
	b, err := m.Open(ctx, "shop-1")
	require.NoError(t, err)
	c, err := m.Open(ctx, "shop-2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Empty(t, a.State().Warehouse)

	_, err = a.Dispatch(ctx, setRate(12000, ""))
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))
	doc, _ := docs.snapshot("shop-1")
	assert.Equal(t, int64(1), doc.Version)
}

func TestManager_CorruptDocumentFallsBackToEmpty(t *testing.T) {
	docs := newFakeDocs()
	docs.docs["shop-1"] = domain.LedgerDocument{Scope: "shop-1", Body: []byte(`{"credits":[{"id":""}]}`), Version: 7}
	m := NewManager(docs, nil, nil, time.Hour, slog.Default(), nil)
	ctx := context.Background()

	s, err := m.Open(ctx, "shop-1")
	require.NoError(t, err)
	assert.Empty(t, s.State().Credits)
	assert.Equal(t, int64(7), s.Version())

	_, err = s.Submit(ctx, setRate(12000, ""))
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))
	doc, _ := docs.snapshot("shop-1")
	assert.Equal(t, int64(8), doc.Version)
}
