package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInsufficientStock  = errors.New("requested quantity exceeds available stock")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrOverPayment        = errors.New("payment exceeds remaining balance")
	ErrAlreadyCompleted   = errors.New("credit already completed")
	ErrRateUnavailable    = errors.New("exchange rate unavailable")
	ErrConfiguration      = errors.New("product configuration does not allow this unit")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
	ErrVersionConflict    = errors.New("optimistic lock conflict")
	ErrCorruptState       = errors.New("corrupt ledger document")
	ErrStaleState         = errors.New("ledger state is stale, reload required")
	ErrLocked             = errors.New("account temporarily locked")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRemoteWrite        = errors.New("remote store write failed")
)
