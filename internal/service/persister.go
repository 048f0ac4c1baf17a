package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
	"github.com/josh-kwaku/shop-ledger/internal/metrics"
)

const DefaultDebounce = 700 * time.Millisecond

// Persister writes the aggregate of one scope to the document repository
// once changes have been quiet for the debounce window. Only the latest
// scheduled state is written; intermediate states are skipped.
//
// Every write is a compare-and-swap on the document version. Losing that
// race marks the persister stale: the pending state is dropped and nothing
// more is written until Reset is called with a freshly loaded version.
type Persister struct {
	scope    string
	docs     documentRepository
	debounce time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	onStale  func()

	mu      sync.Mutex
	pending *ledger.State
	timer   *time.Timer
	version int64
	stale   bool

	// writeMu keeps writes strictly ordered when a save outlasts the window.
	writeMu sync.Mutex
}

func NewPersister(scope string, docs documentRepository, version int64, debounce time.Duration, logger *slog.Logger, m *metrics.Metrics) *Persister {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Persister{
		scope:    scope,
		docs:     docs,
		debounce: debounce,
		logger:   logger.With("scope", scope),
		metrics:  m,
		version:  version,
	}
}

// OnStale registers a callback run once when a version conflict is detected.
func (p *Persister) OnStale(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStale = fn
}

// Schedule records s as the state to write and restarts the quiet window.
func (p *Persister) Schedule(s *ledger.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stale {
		return
	}
	p.pending = s
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		if err := p.Flush(context.Background()); err != nil {
			p.logger.Error("ledger persist failed", "error", err)
		}
	})
}

// Flush writes the pending state now, if there is one.
func (p *Persister) Flush(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	s, version, stale := p.pending, p.version, p.stale
	p.pending = nil
	p.mu.Unlock()

	if s == nil {
		return nil
	}
	if stale {
		return fmt.Errorf("Flush %s: %w", p.scope, domain.ErrStaleState)
	}

	body, err := ledger.Dehydrate(s)
	if err != nil {
		p.requeue(s)
		p.metrics.ObservePersist("error")
		p.logger.Error("ledger not serializable, keeping it pending", "error", err)
		return fmt.Errorf("Flush %s: %w", p.scope, err)
	}

	var doc *domain.LedgerDocument
	if version == 0 {
		doc, err = p.docs.Create(ctx, p.scope, body)
	} else {
		doc, err = p.docs.Update(ctx, p.scope, body, version)
	}

	switch {
	case errors.Is(err, domain.ErrVersionConflict):
		p.metrics.ObservePersist("conflict")
		p.markStale(version)
		return fmt.Errorf("Flush %s: %w", p.scope, err)
	case err != nil:
		p.requeue(s)
		p.metrics.ObservePersist("error")
		return fmt.Errorf("Flush %s: %w", p.scope, err)
	}

	p.mu.Lock()
	p.version = doc.Version
	p.mu.Unlock()

	p.metrics.ObservePersist("saved")
	p.logger.Debug("ledger persisted", "version", doc.Version, "bytes", len(body))
	return nil
}

// requeue keeps s pending after a failed write so the next flush retries it,
// unless a newer state was scheduled meanwhile.
func (p *Persister) requeue(s *ledger.State) {
	p.mu.Lock()
	if p.pending == nil {
		p.pending = s
	}
	p.mu.Unlock()
}

func (p *Persister) markStale(version int64) {
	p.mu.Lock()
	p.stale = true
	p.pending = nil
	fn := p.onStale
	p.mu.Unlock()

	p.logger.Warn("ledger document changed underneath this writer; reload required", "version", version)
	p.metrics.SetStale(1)
	if fn != nil {
		fn()
	}
}

// Reset drops anything pending and continues from a freshly loaded version.
func (p *Persister) Reset(version int64) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.stale {
		p.metrics.SetStale(-1)
	}
	p.pending = nil
	p.version = version
	p.stale = false
}

func (p *Persister) Version() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

func (p *Persister) Stale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stale
}
