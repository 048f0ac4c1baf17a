package lockout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/metrics"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestGuard(t *testing.T) (*Guard, *MemoryStore, *clock) {
	t.Helper()
	c := &clock{t: start}
	store := NewMemoryStore(time.Hour)
	store.now = c.Now

	g, err := NewGuard(shortPolicy(), store, slog.Default(), metrics.New())
	require.NoError(t, err)
	g.now = c.Now
	return g, store, c
}

func wrongPassword(context.Context) error { return domain.ErrInvalidCredentials }
func rightPassword(context.Context) error { return nil }

func TestGuard_LockAndRelease(t *testing.T) {
	g, _, c := newTestGuard(t)
	ctx := context.Background()

	for i := 3; i >= 1; i-- {
		res, err := g.Attempt(ctx, "owner", wrongPassword)
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Equal(t, i, res.AttemptsRemaining)
	}

	res, err := g.Attempt(ctx, "owner", wrongPassword)
	require.ErrorIs(t, err, domain.ErrLocked)
	assert.True(t, res.Locked)
	assert.Equal(t, 60*time.Second, res.RetryAfter)

	c.Advance(20 * time.Second)
	called := false
	res, err = g.Attempt(ctx, "owner", func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, domain.ErrLocked)
	assert.False(t, called)
	assert.Equal(t, 40*time.Second, res.RetryAfter)

	c.Advance(40 * time.Second)
	res, err = g.Attempt(ctx, "owner", wrongPassword)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, 3, res.AttemptsRemaining)

	st, err := g.Status(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Level)
}

func TestGuard_EscalatesThenResetsOnSuccess(t *testing.T) {
	g, _, c := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = g.Attempt(ctx, "owner", wrongPassword)
	}
	c.Advance(time.Minute)
	var res Result
	for i := 0; i < 4; i++ {
		res, _ = g.Attempt(ctx, "owner", wrongPassword)
	}
	assert.Equal(t, 300*time.Second, res.RetryAfter)

	c.Advance(5 * time.Minute)
	_, err := g.Attempt(ctx, "owner", rightPassword)
	require.NoError(t, err)

	st, err := g.Status(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, State{}, st)
}

func TestGuard_KeyedByTargetUsername(t *testing.T) {
	g, _, _ := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = g.Attempt(ctx, "owner", wrongPassword)
	}

	_, err := g.Attempt(ctx, "aziz", rightPassword)
	require.NoError(t, err)
	_, err = g.Attempt(ctx, "owner", rightPassword)
	require.ErrorIs(t, err, domain.ErrLocked)
}

func TestGuard_OtherErrorsAreNotCounted(t *testing.T) {
	g, _, _ := newTestGuard(t)
	ctx := context.Background()
	boom := errors.New("database unavailable")

	for i := 0; i < 10; i++ {
		_, err := g.Attempt(ctx, "owner", func(context.Context) error { return boom })
		require.ErrorIs(t, err, boom)
	}

	st, err := g.Status(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Failures)
}

func TestGuard_ConcurrentFailuresAllCount(t *testing.T) {
	g, _, _ := newTestGuard(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Attempt(ctx, "owner", wrongPassword)
		}()
	}
	wg.Wait()

	st, err := g.Status(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Failures)
}

func TestMemoryStore_IdleTTL(t *testing.T) {
	c := &clock{t: start}
	store := NewMemoryStore(10 * time.Minute)
	store.now = c.Now
	ctx := context.Background()

	until := start.Add(time.Hour)
	require.NoError(t, store.Save(ctx, "locked", State{Level: 2, LockedUntil: &until}))
	require.NoError(t, store.Save(ctx, "idle", State{Failures: 2}))

	c.Advance(11 * time.Minute)

	idle, err := store.Load(ctx, "idle")
	require.NoError(t, err)
	assert.Equal(t, State{}, idle)

	locked, err := store.Load(ctx, "locked")
	require.NoError(t, err)
	assert.Equal(t, 2, locked.Level)

	assert.Equal(t, 1, store.Sweep())
}
