package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

type record struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Actor      string          `json:"actor"`
	At         time.Time       `json:"at"`
	Payload    json.RawMessage `json:"payload"`
	Audit      json.RawMessage `json:"audit,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// recordStore keeps every accepted record per scope in memory.
type recordStore struct {
	mu      sync.Mutex
	records map[string][]record
}

func (s *recordStore) add(scope string, r record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[scope] = append(s.records[scope], r)
}

func (s *recordStore) list(scope string) []record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record, len(s.records[scope]))
	copy(out, s.records[scope])
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func main() {
	logging.Init("mock-remote", "info", os.Getenv("APP_ENV"))

	// MOCK_REMOTE_FAIL=true rejects every write, to exercise the
	// remote-first path of the ledger service.
	failWrites := os.Getenv("MOCK_REMOTE_FAIL") == "true"
	store := &recordStore{records: map[string][]record{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /scopes/{scope}/records", func(w http.ResponseWriter, r *http.Request) {
		if failWrites {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "writes disabled"})
			return
		}

		var rec record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.Type == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid record"})
			return
		}
		rec.ID = uuid.NewString()
		rec.ReceivedAt = time.Now().UTC()

		scope := r.PathValue("scope")
		store.add(scope, rec)
		slog.Info("record stored", "scope", scope, "type", rec.Type, "actor", rec.Actor, "id", rec.ID)
		writeJSON(w, http.StatusCreated, map[string]string{"id": rec.ID})
	})

	mux.HandleFunc("GET /scopes/{scope}/records", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.list(r.PathValue("scope")))
	})

	slog.Info("mock remote started", "addr", ":8081", "fail_writes", failWrites)
	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
