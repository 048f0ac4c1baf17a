package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/metrics"
)

// LedgerStore is the live handle on one scope's aggregate. Reads are lock
// free; writes are serialized so every action sees the result of the one
// before it.
type LedgerStore struct {
	scope     string
	docs      documentRepository
	audit     auditRepository
	remote    remoteWriter
	persister *Persister
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu    sync.Mutex
	state atomic.Pointer[ledger.State]
	stale atomic.Bool
}

type LedgerStoreDeps struct {
	Docs     documentRepository
	Audit    auditRepository
	Remote   remoteWriter
	Debounce time.Duration
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// OpenLedgerStore loads scope from the document repository. A missing or
// corrupt document yields an empty aggregate; a corrupt one is logged and is
// overwritten by the next successful write.
func OpenLedgerStore(ctx context.Context, scope string, deps LedgerStoreDeps) (*LedgerStore, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &LedgerStore{
		scope:   scope,
		docs:    deps.Docs,
		audit:   deps.Audit,
		remote:  deps.Remote,
		logger:  logger.With("scope", scope),
		metrics: deps.Metrics,
		now:     time.Now,
	}

	state, version, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("OpenLedgerStore: %w", err)
	}
	s.state.Store(state)
	s.persister = NewPersister(scope, deps.Docs, version, deps.Debounce, logger, deps.Metrics)
	s.persister.OnStale(func() { s.stale.Store(true) })
	return s, nil
}

func (s *LedgerStore) load(ctx context.Context) (*ledger.State, int64, error) {
	doc, err := s.docs.Get(ctx, s.scope)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Info("no ledger document yet, starting empty")
		return ledger.Empty(), 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	state, err := ledger.Hydrate(doc.Body)
	if err != nil {
		s.logger.Error("ledger document rejected, starting empty", "version", doc.Version, "error", err)
		return ledger.Empty(), doc.Version, nil
	}
	return state, doc.Version, nil
}

func (s *LedgerStore) Scope() string { return s.scope }

// State returns the current aggregate. The value must not be modified.
func (s *LedgerStore) State() *ledger.State { return s.state.Load() }

func (s *LedgerStore) Version() int64 { return s.persister.Version() }

func (s *LedgerStore) Stale() bool { return s.stale.Load() }

// Dispatch applies a locally and schedules persistence. Nothing external is
// written.
func (s *LedgerStore) Dispatch(ctx context.Context, a ledger.Action) (*ledger.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale.Load() {
		return s.State(), fmt.Errorf("Dispatch: %w", domain.ErrStaleState)
	}
	next, err := s.apply(a)
	if err != nil {
		return s.State(), fmt.Errorf("Dispatch: %w", err)
	}
	return next, nil
}

// Submit performs the external write for a and, once it succeeded, applies
// a locally. The action is first applied to a scratch copy so a rejected
// action never reaches the remote store. The remote write is attempted once;
// a failed write leaves the local aggregate untouched.
func (s *LedgerStore) Submit(ctx context.Context, a ledger.Action) (*ledger.State, error) {
	log := logging.FromContext(ctx)
	start := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale.Load() {
		return s.State(), fmt.Errorf("Submit: %w", domain.ErrStaleState)
	}
	if !ledger.Known(a.Kind) {
		return s.State(), fmt.Errorf("Submit: unknown action %q: %w", a.Kind, domain.ErrValidation)
	}

	if _, err := ledger.Apply(s.State(), a); err != nil {
		s.metrics.ObserveAction(string(a.Kind), "rejected", s.now().Sub(start))
		return s.State(), fmt.Errorf("Submit: %w", err)
	}

	if s.remote != nil {
		if err := s.remote.Write(ctx, s.scope, a); err != nil {
			s.metrics.ObserveAction(string(a.Kind), "remote_failed", s.now().Sub(start))
			return s.State(), fmt.Errorf("Submit: %w: %w", domain.ErrRemoteWrite, err)
		}
	}

	if err := s.appendAudit(ctx, a); err != nil {
		// The remote write already happened, so the local state follows it.
		log.Warn("audit append failed", "action", a.Kind, "error", err)
	}

	next, err := s.apply(a)
	if err != nil {
		return s.State(), fmt.Errorf("Submit: %w", err)
	}
	s.metrics.ObserveAction(string(a.Kind), "applied", s.now().Sub(start))
	log.Info("ledger action applied", "scope", s.scope, "action", a.Kind, "actor", a.Actor.Username)
	return next, nil
}

// apply must be called with s.mu held.
func (s *LedgerStore) apply(a ledger.Action) (*ledger.State, error) {
	cur := s.State()
	next, err := ledger.Apply(cur, a)
	if err != nil {
		return cur, err
	}
	if next == cur {
		return cur, nil
	}
	s.state.Store(next)
	s.persister.Schedule(next)
	return next, nil
}

func (s *LedgerStore) appendAudit(ctx context.Context, a ledger.Action) error {
	if s.audit == nil {
		return nil
	}
	body := a.Audit
	if len(body) == 0 {
		var err error
		body, err = json.Marshal(map[string]any{"type": a.Kind, "payload": a.Payload})
		if err != nil {
			return fmt.Errorf("appendAudit: %w", err)
		}
	}
	return s.audit.Append(ctx, &domain.AuditEntry{
		ID:         uuid.New(),
		Scope:      s.scope,
		ActionKind: string(a.Kind),
		Actor:      a.Actor.Username,
		Body:       body,
		CreatedAt:  a.At.UTC(),
	})
}

// Flush writes any pending state immediately.
func (s *LedgerStore) Flush(ctx context.Context) error {
	return s.persister.Flush(ctx)
}

// Reload replaces the in-memory aggregate with the stored document and
// clears the stale mark. Unsaved local changes are discarded.
func (s *LedgerStore) Reload(ctx context.Context) (*ledger.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, version, err := s.load(ctx)
	if err != nil {
		return s.State(), fmt.Errorf("Reload: %w", err)
	}
	s.persister.Reset(version)
	s.state.Store(state)
	s.stale.Store(false)
	s.logger.Info("ledger reloaded", "version", version)
	return state, nil
}
