package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrAlreadyCancelled means the conditional status flip matched nothing:
	// the booking was cancelled before this attempt.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	ErrDuplicateReference = errors.New("booking reference already exists")
)
