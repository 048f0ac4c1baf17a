package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const documentColumns = `scope, body, version, updated_at`

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Get(ctx context.Context, scope string) (*domain.LedgerDocument, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM ledger_documents WHERE scope = $1`, scope,
	)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return d, nil
}

// Create writes the first version of a scope's document. Losing the race to
// another writer is reported as a version conflict.
func (r *DocumentRepository) Create(ctx context.Context, scope string, body json.RawMessage) (*domain.LedgerDocument, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO ledger_documents (scope, body, version, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (scope) DO NOTHING
		RETURNING `+documentColumns,
		scope, []byte(body),
	)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Create: %w", domain.ErrVersionConflict)
		}
		return nil, fmt.Errorf("Create: %w", err)
	}
	return d, nil
}

// Update replaces the body only if the stored version still equals version.
func (r *DocumentRepository) Update(ctx context.Context, scope string, body json.RawMessage, version int64) (*domain.LedgerDocument, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE ledger_documents SET body = $1, version = version + 1, updated_at = now()
		WHERE scope = $2 AND version = $3
		RETURNING `+documentColumns,
		[]byte(body), scope, version,
	)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Update: %w", domain.ErrVersionConflict)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return d, nil
}

func scanDocument(s scanner) (*domain.LedgerDocument, error) {
	var (
		d    domain.LedgerDocument
		body []byte
	)
	if err := s.Scan(&d.Scope, &body, &d.Version, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Body = body
	return &d, nil
}
