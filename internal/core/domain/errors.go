package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput indicates a chat submission with no content after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrTurnInFlight indicates a chat submission arrived while a previous
	// turn was still classifying or handling. At most one turn may be in
	// flight at a time; callers disable input rather than queueing.
	ErrTurnInFlight = errors.New("turn already in flight")

	// ErrRecordsUnavailable indicates the records client is not configured.
	ErrRecordsUnavailable = errors.New("records client unavailable")

	// ErrCompletionUnavailable indicates the completion service is not configured.
	// The assistant cannot classify or chat without it.
	ErrCompletionUnavailable = errors.New("completion service unavailable")
)
