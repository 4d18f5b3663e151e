package store

import "errors"

// Store errors.
var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidInterval is returned for a non-positive resample interval.
	ErrInvalidInterval = errors.New("invalid resample interval")
)
