package timerlib

import "errors"

var (
	// ErrNotFound is returned when an operation references a timer id that
	// is no longer present. Callers treat it as a no-op.
	ErrNotFound = errors.New("timer not found")
	// ErrInvalidDuration is returned when a timer is created with a
	// non-positive duration.
	ErrInvalidDuration = errors.New("duration must be greater than zero")
	// ErrInvalidState is returned by Validate for a timer whose fields
	// contradict its state.
	ErrInvalidState = errors.New("invalid timer state")
)
