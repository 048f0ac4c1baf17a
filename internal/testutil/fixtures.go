package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

const (
	TestScope    = "shop-test"
	TestPassword = "password123"
)

func SeedTestUser(t *testing.T, db *sql.DB, username string, role domain.Role, scope string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Scope:        scope,
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, username, password_hash, role, scope, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.Scope, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", username, err)
	}
	return u
}

func DocumentVersion(t *testing.T, db *sql.DB, scope string) int64 {
	t.Helper()

	var v int64
	err := db.QueryRow(`SELECT version FROM ledger_documents WHERE scope = $1`, scope).Scan(&v)
	if err != nil {
		t.Fatalf("document version %s: %v", scope, err)
	}
	return v
}

func CountAuditEntries(t *testing.T, db *sql.DB, scope string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM audit_entries WHERE scope = $1`, scope).Scan(&count)
	if err != nil {
		t.Fatalf("count audit entries for %s: %v", scope, err)
	}
	return count
}
