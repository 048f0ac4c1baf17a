package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/metrics"
)

// Manager hands out one LedgerStore per scope, opening it on first use.
type Manager struct {
	docs     documentRepository
	audit    auditRepository
	remote   remoteWriter
	debounce time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	stores map[string]*LedgerStore
}

func NewManager(
	docs documentRepository,
	audit auditRepository,
	remote remoteWriter,
	debounce time.Duration,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Manager {
	return &Manager{
		docs:     docs,
		audit:    audit,
		remote:   remote,
		debounce: debounce,
		logger:   logger,
		metrics:  m,
		stores:   make(map[string]*LedgerStore),
	}
}

func (m *Manager) Open(ctx context.Context, scope string) (*LedgerStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[scope]; ok {
		return s, nil
	}
	s, err := OpenLedgerStore(ctx, scope, LedgerStoreDeps{
		Docs:     m.docs,
		Audit:    m.audit,
		Remote:   m.remote,
		Debounce: m.debounce,
		Logger:   m.logger,
		Metrics:  m.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("Open %s: %w", scope, err)
	}
	m.stores[scope] = s
	return s, nil
}

// Close flushes every open store.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	stores := make([]*LedgerStore, 0, len(m.stores))
	for _, s := range m.stores {
		stores = append(stores, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range stores {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
