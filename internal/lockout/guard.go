package lockout

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/metrics"
)

// Store keeps lockout records by username. Load returns the zero State for
// an unknown username.
type Store interface {
	Load(ctx context.Context, username string) (State, error)
	Save(ctx context.Context, username string, s State) error
	Delete(ctx context.Context, username string) error
}

// Result describes the outcome of an attempt for the caller's UI.
type Result struct {
	Locked            bool
	RetryAfter        time.Duration
	AttemptsRemaining int
}

const stripes = 64

// Guard runs credential checks through the lockout state machine. Attempts
// on the same username are serialized so concurrent failures are all
// counted.
type Guard struct {
	policy  Policy
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	locks   [stripes]sync.Mutex
}

func NewGuard(policy Policy, store Store, logger *slog.Logger, m *metrics.Metrics) (*Guard, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("NewGuard: %w", err)
	}
	return &Guard{
		policy:  policy,
		store:   store,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}, nil
}

func (g *Guard) lockFor(username string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(username))
	return &g.locks[h.Sum32()%stripes]
}

// Attempt checks the lock on username and, when OPEN, calls verify. verify
// reports bad credentials with domain.ErrInvalidCredentials; only those
// count as failures. Any other error from verify is returned untouched and
// leaves the lockout record as it was.
func (g *Guard) Attempt(ctx context.Context, username string, verify func(context.Context) error) (Result, error) {
	mu := g.lockFor(username)
	mu.Lock()
	defer mu.Unlock()

	now := g.now()
	st, err := g.store.Load(ctx, username)
	if err != nil {
		return Result{}, fmt.Errorf("Attempt: load lockout state: %w", err)
	}
	st = g.policy.Refresh(st, now)

	if st.Locked(now) {
		g.metrics.ObserveUnlock("locked")
		return Result{Locked: true, RetryAfter: st.Remaining(now)},
			fmt.Errorf("Attempt %s: %w", username, domain.ErrLocked)
	}

	verr := verify(ctx)
	switch {
	case verr == nil:
		if err := g.store.Delete(ctx, username); err != nil {
			return Result{}, fmt.Errorf("Attempt: clear lockout state: %w", err)
		}
		g.metrics.ObserveUnlock("success")
		return Result{}, nil

	case errors.Is(verr, domain.ErrInvalidCredentials):
		next, locked := g.policy.Fail(st, now)
		if err := g.store.Save(ctx, username, next); err != nil {
			return Result{}, fmt.Errorf("Attempt: save lockout state: %w", err)
		}
		g.metrics.ObserveUnlock("failure")
		if locked {
			g.metrics.ObserveLockout(st.Level)
			g.logger.Warn("account locked",
				"username", username,
				"level", st.Level,
				"until", next.LockedUntil,
			)
			return Result{Locked: true, RetryAfter: next.Remaining(now)},
				fmt.Errorf("Attempt %s: %w", username, domain.ErrLocked)
		}
		return Result{AttemptsRemaining: g.policy.AttemptsLeft(next)}, verr

	default:
		return Result{}, verr
	}
}

// Status returns the current record for username with expired locks
// already released.
func (g *Guard) Status(ctx context.Context, username string) (State, error) {
	st, err := g.store.Load(ctx, username)
	if err != nil {
		return State{}, fmt.Errorf("Status: %w", err)
	}
	return g.policy.Refresh(st, g.now()), nil
}
