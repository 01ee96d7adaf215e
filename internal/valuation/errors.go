package valuation

import "errors"

var (
	// ErrNotFound marks symbols absent from the registry or deliberately
	// inactive. Never retried.
	ErrNotFound = errors.New("fund not found")

	// ErrUnavailable marks a transient acquisition failure after the whole
	// fallback ladder was exhausted. Safe to retry later; the periodic
	// background fetch will.
	ErrUnavailable = errors.New("fund data unavailable")

	// ErrRateLimited accompanies ErrUnavailable when the provider was
	// throttling, so the boundary can suggest a longer wait.
	ErrRateLimited = errors.New("provider rate limit exceeded")
)
