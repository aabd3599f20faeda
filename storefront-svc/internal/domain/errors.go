package domain

import "errors"

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrEntityNotFound    = errors.New("entity not found")
	ErrDataUnavailable   = errors.New("data unavailable")
	ErrConnection        = errors.New("connection error")
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
)
