package errors

import "errors"

var (
	ErrNotFound = errors.New("room not found")

	ErrInvalidID = errors.New("invalid room ID format")

	// ErrNoUnits means the conditional decrement matched nothing: the room
	// has no bookable units left (or was marked unavailable).
	ErrNoUnits = errors.New("no available room units")
)
