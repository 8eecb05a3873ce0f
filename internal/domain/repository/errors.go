package repository

import "errors"

// Soft upstream failures. Each skips a tier; none aborts a resolution.
var (
	// ErrRateLimited marks a response carrying the provider's call
	// frequency advisory, or a locally exhausted request budget.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrMalformed marks a response missing the expected series or a
	// latest price that does not parse to a positive number.
	ErrMalformed = errors.New("upstream response malformed")

	// ErrUpstream marks a hard provider error ("Error Message" payload).
	ErrUpstream = errors.New("upstream error")
)
