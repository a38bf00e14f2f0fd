package tracker

import "errors"

var (
	// ErrShiftExists is returned when the employee already has a shift for the requested day.
	ErrShiftExists = errors.New("shift already exists for this day")
	// ErrInvalidInput is returned when a request misses a required field or carries a malformed value.
	ErrInvalidInput = errors.New("invalid input")
)
