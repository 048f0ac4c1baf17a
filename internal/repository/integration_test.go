package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/repository"
	"github.com/josh-kwaku/shop-ledger/internal/testutil"
)

func TestDocumentRepository_VersionedWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "shop-1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := repo.Create(ctx, "shop-1", json.RawMessage(`{"warehouse":[]}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)

	_, err = repo.Create(ctx, "shop-1", json.RawMessage(`{}`))
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	doc, err = repo.Update(ctx, "shop-1", json.RawMessage(`{"warehouse":[],"store":[]}`), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)

	_, err = repo.Update(ctx, "shop-1", json.RawMessage(`{}`), 1)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	got, err := repo.Get(ctx, "shop-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.JSONEq(t, `{"warehouse":[],"store":[]}`, string(got.Body))
	assert.Equal(t, int64(2), testutil.DocumentVersion(t, db, "shop-1"))
}

func TestAuditRepository_AppendAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAuditRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for i, kind := range []string{"RECEIVE_STOCK", "SELL", "OPEN_CREDIT"} {
		err := repo.Append(ctx, &domain.AuditEntry{
			ID:         uuid.New(),
			Scope:      "shop-1",
			ActionKind: kind,
			Actor:      "owner",
			Body:       json.RawMessage(`{"note":"` + kind + `"}`),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := repo.ListByScope(ctx, "shop-1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "OPEN_CREDIT", entries[0].ActionKind)
	assert.Equal(t, "SELL", entries[1].ActionKind)
	assert.JSONEq(t, `{"note":"SELL"}`, string(entries[1].Body))
	assert.Equal(t, 3, testutil.CountAuditEntries(t, db, "shop-1"))
	assert.Equal(t, 0, testutil.CountAuditEntries(t, db, "shop-2"))
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	seeded := testutil.SeedTestUser(t, db, "aziz", domain.RoleSeller, testutil.TestScope)

	u, err := repo.GetByUsername(context.Background(), "aziz")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)
	assert.Equal(t, domain.RoleSeller, u.Role)
	assert.Equal(t, testutil.TestScope, u.Scope)

	_, err = repo.GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIdempotencyRepository_FirstResponseWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	entry := &repository.IdempotencyEntry{
		Key:          "k-1",
		Scope:        "shop-1",
		Username:     "aziz",
		RequestHash:  "abc",
		StatusCode:   200,
		ResponseBody: []byte(`{"first":true}`),
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
	require.NoError(t, repo.Put(ctx, entry))

	second := *entry
	second.ResponseBody = []byte(`{"first":false}`)
	require.NoError(t, repo.Put(ctx, &second))

	got, err := repo.Get(ctx, "shop-1", "aziz", "k-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"first":true}`, string(got.ResponseBody))

	other, err := repo.Get(ctx, "shop-1", "owner", "k-1")
	require.NoError(t, err)
	assert.Nil(t, other)

	expired := *entry
	expired.Key = "k-2"
	expired.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, repo.Put(ctx, &expired))

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
