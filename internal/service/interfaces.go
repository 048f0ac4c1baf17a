package service

import (
	"context"
	"encoding/json"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
)

type documentRepository interface {
	Get(ctx context.Context, scope string) (*domain.LedgerDocument, error)
	Create(ctx context.Context, scope string, body json.RawMessage) (*domain.LedgerDocument, error)
	Update(ctx context.Context, scope string, body json.RawMessage, version int64) (*domain.LedgerDocument, error)
}

type auditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
}

type userRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// remoteWriter performs the external write an action stands for. It is
// called once per submission and never retried.
type remoteWriter interface {
	Write(ctx context.Context, scope string, a ledger.Action) error
}
