package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

type reasonDetails struct {
	Reason string `json:"reason"`
}

// domainErrors is checked in order; the first match wins.
var domainErrors = []struct {
	err    error
	appErr *AppError
}{
	{domain.ErrStaleState, ErrStaleState},
	{domain.ErrVersionConflict, ErrVersionConflict},
	{domain.ErrRemoteWrite, ErrRemoteUnavailable},
	{domain.ErrPermissionDenied, ErrPermissionDenied},
	{domain.ErrInsufficientStock, ErrInsufficientStock},
	{domain.ErrOverPayment, ErrOverPayment},
	{domain.ErrAlreadyCompleted, ErrAlreadyCompleted},
	{domain.ErrRateUnavailable, ErrRateUnavailable},
	{domain.ErrConfiguration, ErrConfiguration},
	{domain.ErrInvalidCurrency, ErrInvalidCurrency},
	{domain.ErrCurrencyMismatch, ErrCurrencyMismatch},
	{domain.ErrInvalidAmount, ErrInvalidAmount},
	{domain.ErrAccountExists, ErrAccountExists},
	{domain.ErrNotFound, ErrResourceNotFound},
	{domain.ErrValidation, ErrRejectedAction},
	{domain.ErrLocked, ErrAccountLocked},
	{domain.ErrInvalidCredentials, ErrInvalidCredentials},
}

// RespondDomainError maps err to its AppError. Client errors carry the
// wrapped message as the reason so the caller sees what was rejected.
func RespondDomainError(w http.ResponseWriter, err error) {
	for _, m := range domainErrors {
		if !errors.Is(err, m.err) {
			continue
		}
		var details any
		if m.appErr.Status < http.StatusInternalServerError {
			details = reasonDetails{Reason: err.Error()}
		}
		RespondAppError(w, m.appErr, details)
		return
	}

	slog.Error("unhandled domain error", "error", err)
	RespondAppError(w, ErrInternalError, nil)
}
