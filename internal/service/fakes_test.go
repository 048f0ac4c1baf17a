package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
)

type fakeDocs struct {
	mu     sync.Mutex
	docs   map[string]domain.LedgerDocument
	writes int
	err    error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: map[string]domain.LedgerDocument{}}
}

func (f *fakeDocs) Get(_ context.Context, scope string) (*domain.LedgerDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[scope]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDocs) Create(_ context.Context, scope string, body json.RawMessage) (*domain.LedgerDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.docs[scope]; ok {
		return nil, domain.ErrVersionConflict
	}
	d := domain.LedgerDocument{Scope: scope, Body: body, Version: 1, UpdatedAt: time.Now()}
	f.docs[scope] = d
	f.writes++
	return &d, nil
}

func (f *fakeDocs) Update(_ context.Context, scope string, body json.RawMessage, version int64) (*domain.LedgerDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.docs[scope]
	if !ok || d.Version != version {
		return nil, domain.ErrVersionConflict
	}
	d = domain.LedgerDocument{Scope: scope, Body: body, Version: version + 1, UpdatedAt: time.Now()}
	f.docs[scope] = d
	f.writes++
	return &d, nil
}

// bump simulates another writer saving the document.
func (f *fakeDocs) bump(scope string, body json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.docs[scope]
	d.Scope = scope
	d.Body = body
	d.Version++
	f.docs[scope] = d
}

func (f *fakeDocs) snapshot(scope string) (domain.LedgerDocument, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[scope], f.writes
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
	calls   *[]string
}

func (f *fakeAudit) Append(_ context.Context, e *domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls != nil {
		*f.calls = append(*f.calls, "audit")
	}
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

type fakeRemote struct {
	mu     sync.Mutex
	writes []ledger.Action
	err    error
	calls  *[]string
}

func (f *fakeRemote) Write(_ context.Context, _ string, a ledger.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls != nil {
		*f.calls = append(*f.calls, "remote")
	}
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, a)
	return nil
}

type fakeUsers struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

var errRemoteDown = errors.New("remote store unavailable")
