package lockout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS lockout_states (
		username     TEXT PRIMARY KEY,
		failures     INTEGER NOT NULL DEFAULT 0,
		level        INTEGER NOT NULL DEFAULT 0,
		locked_until INTEGER,
		updated_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lockout_updated ON lockout_states(updated_at)`,
}

// SQLiteStore keeps records in a local SQLite file so locks survive a
// restart of the service.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating when needed) the database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteMigrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("OpenSQLite: migrate: %w", err)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Load(ctx context.Context, username string) (State, error) {
	var (
		st     State
		locked sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT failures, level, locked_until FROM lockout_states WHERE username = ?`, username,
	).Scan(&st.Failures, &st.Level, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("SQLiteStore.Load: %w", err)
	}
	if locked.Valid {
		until := time.UnixMilli(locked.Int64).UTC()
		st.LockedUntil = &until
	}
	return st, nil
}

func (s *SQLiteStore) Save(ctx context.Context, username string, st State) error {
	var locked sql.NullInt64
	if st.LockedUntil != nil {
		locked = sql.NullInt64{Int64: st.LockedUntil.UnixMilli(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lockout_states (username, failures, level, locked_until, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			failures     = excluded.failures,
			level        = excluded.level,
			locked_until = excluded.locked_until,
			updated_at   = excluded.updated_at`,
		username, st.Failures, st.Level, locked, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("SQLiteStore.Save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, username string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lockout_states WHERE username = ?`, username); err != nil {
		return fmt.Errorf("SQLiteStore.Delete: %w", err)
	}
	return nil
}

// Prune removes records that are not locked and were last written before
// cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM lockout_states
		WHERE updated_at < ?
		  AND (locked_until IS NULL OR locked_until <= ?)`,
		cutoff.UnixMilli(), s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("SQLiteStore.Prune: %w", err)
	}
	return res.RowsAffected()
}
