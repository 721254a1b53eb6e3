package models

import "errors"

// Error taxonomy of the ledger core. Callers wrap these with a reason via
// fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrUnsupported       = errors.New("unsupported")
)
