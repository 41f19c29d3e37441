package events

import "errors"

var (
	ErrPublisherClosed = errors.New("publisher is closed")

	ErrEmptyKey = errors.New("message key cannot be empty")
)
