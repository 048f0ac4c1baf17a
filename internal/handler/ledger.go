package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/ledger"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/service"
)

type ledgerStores interface {
	Open(ctx context.Context, scope string) (*service.LedgerStore, error)
}

type auditReader interface {
	ListByScope(ctx context.Context, scope string, limit int) ([]domain.AuditEntry, error)
}

type LedgerHandler struct {
	stores ledgerStores
	audit  auditReader
}

func NewLedgerHandler(stores ledgerStores, audit auditReader) *LedgerHandler {
	return &LedgerHandler{stores: stores, audit: audit}
}

type stateResponse struct {
	Scope   string          `json:"scope"`
	Version int64           `json:"version"`
	Stale   bool            `json:"stale"`
	State   json.RawMessage `json:"state"`
}

type actionRequest ledger.Envelope

func (r actionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !ledger.Known(r.Type) {
		errs = append(errs, FieldError{Field: "type", Message: "unknown action type"})
	}
	if len(r.Payload) == 0 {
		errs = append(errs, FieldError{Field: "payload", Message: "required"})
	}
	return errs
}

type auditEntryDTO struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	Actor     string          `json:"actor"`
	Body      json.RawMessage `json:"body"`
	CreatedAt string          `json:"created_at"`
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

func (h *LedgerHandler) open(w http.ResponseWriter, r *http.Request) (*service.LedgerStore, bool) {
	claims, appErr := claimsForScope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return nil, false
	}
	store, err := h.stores.Open(r.Context(), claims.Scope)
	if err != nil {
		logging.FromContext(r.Context()).Error("open ledger failed", "error", err)
		RespondDomainError(w, err)
		return nil, false
	}
	return store, true
}

func (h *LedgerHandler) respondState(w http.ResponseWriter, r *http.Request, store *service.LedgerStore, s *ledger.State) {
	body, err := ledger.Dehydrate(s)
	if err != nil {
		logging.FromContext(r.Context()).Error("dehydrate ledger failed", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}
	RespondSuccess(w, http.StatusOK, stateResponse{
		Scope:   store.Scope(),
		Version: store.Version(),
		Stale:   store.Stale(),
		State:   body,
	})
}

func (h *LedgerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	store, ok := h.open(w, r)
	if !ok {
		return
	}
	h.respondState(w, r, store, store.State())
}

func (h *LedgerHandler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	claims, appErr := claimsForScope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	action, err := ledger.Envelope(req).Action(claims.Actor(), time.Now().UTC())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	store, ok := h.open(w, r)
	if !ok {
		return
	}
	next, err := store.Submit(r.Context(), action)
	if err != nil {
		logging.FromContext(r.Context()).Warn("action not applied", "action", action.Kind, "error", err)
		RespondDomainError(w, err)
		return
	}
	h.respondState(w, r, store, next)
}

func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	store, ok := h.open(w, r)
	if !ok {
		return
	}
	RespondSuccess(w, http.StatusOK, ledger.Summarize(store.State()))
}

func (h *LedgerHandler) Reload(w http.ResponseWriter, r *http.Request) {
	store, ok := h.open(w, r)
	if !ok {
		return
	}
	next, err := store.Reload(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("reload ledger failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	h.respondState(w, r, store, next)
}

func (h *LedgerHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	claims, appErr := claimsForScope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAuditLimit {
			RespondValidationError(w, []FieldError{{Field: "limit", Message: "must be between 1 and 500"}})
			return
		}
		limit = n
	}

	entries, err := h.audit.ListByScope(r.Context(), claims.Scope, limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("list audit failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]auditEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryDTO{
			ID:        e.ID.String(),
			Action:    e.ActionKind,
			Actor:     e.Actor,
			Body:      e.Body,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	RespondSuccess(w, http.StatusOK, out)
}
