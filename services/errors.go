package services

import "errors"

// Error taxonomy. Controllers map these to HTTP statuses; none of them are
// retried automatically. Wrap with fmt.Errorf("%w: ...") to add detail.
var (
	ErrNotFound          = errors.New("record not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrInvalidState      = errors.New("invalid delivery state")
)
