package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const auditColumns = `id, scope, action_kind, actor, body, created_at`

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, scope, action_kind, actor, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Scope, entry.ActionKind, entry.Actor,
		[]byte(entry.Body), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

// ListByScope returns the newest entries first.
func (r *AuditRepository) ListByScope(ctx context.Context, scope string, limit int) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_entries
		WHERE scope = $1 ORDER BY created_at DESC, id LIMIT $2`, scope, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByScope: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByScope: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByScope: rows: %w", err)
	}
	return entries, nil
}

func scanAuditEntry(s scanner) (*domain.AuditEntry, error) {
	var (
		e    domain.AuditEntry
		body []byte
	)
	err := s.Scan(&e.ID, &e.Scope, &e.ActionKind, &e.Actor, &body, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Body = body
	return &e, nil
}
