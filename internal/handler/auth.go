package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/service"
)

type unlocker interface {
	Unlock(ctx context.Context, username, password string) (*service.UnlockResult, error)
}

type AuthHandler struct {
	auth unlocker
}

func NewAuthHandler(auth unlocker) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type unlockRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r unlockRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	return errs
}

type unlockResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Scope    string      `json:"scope"`
}

type lockedDetails struct {
	RetryAfterSeconds int `json:"retry_after_seconds"`
}

type attemptsDetails struct {
	AttemptsRemaining int `json:"attempts_remaining"`
}

func (h *AuthHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.auth.Unlock(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, domain.ErrLocked):
		secs := int(math.Ceil(res.Lockout.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		RespondAppError(w, ErrAccountLocked, lockedDetails{RetryAfterSeconds: secs})
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		RespondAppError(w, ErrInvalidCredentials, attemptsDetails{AttemptsRemaining: res.Lockout.AttemptsRemaining})
		return
	case err != nil:
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, unlockResponse{
		Token: res.Token,
		User: userDTO{
			ID:       res.User.ID,
			Username: res.User.Username,
			Role:     res.User.Role,
			Scope:    res.User.Scope,
		},
	})
}
