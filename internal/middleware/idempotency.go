package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/auth"
	"github.com/josh-kwaku/shop-ledger/internal/handler"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/repository"
)

type idempotencyRepository interface {
	Get(ctx context.Context, scope, username, key string) (*repository.IdempotencyEntry, error)
	Put(ctx context.Context, entry *repository.IdempotencyEntry) error
}

const (
	idempotencyTTL     = 24 * time.Hour
	maxIdempotencyKey  = 128
	maxActionBodyBytes = 1 << 20
)

// Idempotency replays the stored response for a repeated Idempotency-Key
// from the same user in the same scope. Only 2xx responses are stored, so a
// rejected action may be retried under the same key.
func Idempotency(repo idempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			switch {
			case key == "":
				handler.RespondAppError(w, handler.ErrMissingIdempotencyKey, nil)
				return
			case len(key) > maxIdempotencyKey:
				handler.RespondAppError(w, handler.ErrInvalidRequest, map[string]string{"reason": "Idempotency-Key longer than 128 characters"})
				return
			}

			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBodyBytes))
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := requestFingerprint(r.Method, r.URL.Path, body)

			log := logging.FromContext(r.Context()).With("idempotency_key", key)

			cached, err := repo.Get(r.Context(), claims.Scope, claims.Username, key)
			if err != nil {
				log.Error("idempotency lookup failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if cached != nil {
				if cached.RequestHash != fingerprint {
					handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
					return
				}
				replay(w, cached)
				return
			}

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.statusCode < 200 || rec.statusCode >= 300 {
				return
			}

			now := time.Now().UTC()
			if err := repo.Put(r.Context(), &repository.IdempotencyEntry{
				Key:          key,
				Scope:        claims.Scope,
				Username:     claims.Username,
				RequestHash:  fingerprint,
				StatusCode:   rec.statusCode,
				ResponseBody: rec.body.Bytes(),
				CreatedAt:    now,
				ExpiresAt:    now.Add(idempotencyTTL),
			}); err != nil {
				log.Error("idempotency store failed", "error", err)
			}
		})
	}
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

func replay(w http.ResponseWriter, e *repository.IdempotencyEntry) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotent-Replayed", "true")
	w.WriteHeader(e.StatusCode)
	w.Write(e.ResponseBody)
}

// requestFingerprint binds a key to one method, path and body.
func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(method), []byte(path), body} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
