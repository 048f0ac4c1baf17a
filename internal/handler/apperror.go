package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password"}
	ErrAccountLocked      = &AppError{http.StatusLocked, "ACCOUNT_LOCKED", "Too many failed attempts, try again later"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrPermissionDenied   = &AppError{http.StatusForbidden, "PERMISSION_DENIED", "Your role does not allow this action"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInsufficientStock = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "Requested quantity exceeds available stock"}
	ErrInvalidAmount     = &AppError{http.StatusUnprocessableEntity, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrOverPayment       = &AppError{http.StatusUnprocessableEntity, "OVER_PAYMENT", "Payment exceeds remaining balance"}
	ErrAlreadyCompleted  = &AppError{http.StatusUnprocessableEntity, "ALREADY_COMPLETED", "Credit is already completed"}
	ErrRateUnavailable   = &AppError{http.StatusUnprocessableEntity, "RATE_UNAVAILABLE", "Exchange rate is not set"}
	ErrConfiguration     = &AppError{http.StatusUnprocessableEntity, "UNIT_NOT_SUPPORTED", "Product configuration does not allow this unit"}
	ErrInvalidCurrency   = &AppError{http.StatusUnprocessableEntity, "INVALID_CURRENCY", "Invalid currency"}
	ErrCurrencyMismatch  = &AppError{http.StatusUnprocessableEntity, "CURRENCY_MISMATCH", "Currency mismatch"}
	ErrAccountExists     = &AppError{http.StatusConflict, "ACCOUNT_ALREADY_EXISTS", "Account already exists"}
	ErrRejectedAction    = &AppError{http.StatusUnprocessableEntity, "ACTION_REJECTED", "Action was rejected"}

	ErrVersionConflict       = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Ledger was modified elsewhere, reload and retry"}
	ErrStaleState            = &AppError{http.StatusConflict, "STALE_STATE", "Ledger is stale, reload required"}
	ErrRemoteUnavailable     = &AppError{http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Remote store rejected the write"}
	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
