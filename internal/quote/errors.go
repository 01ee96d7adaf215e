package quote

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure so callers can choose the next rung of
// the fallback ladder without sniffing error strings.
type Kind int

const (
	// KindOther is any failure without a more specific classification.
	KindOther Kind = iota
	// KindRateLimited maps to HTTP 429 and equivalents.
	KindRateLimited
	// KindNotFound covers unknown and delisted tickers (HTTP 404 and
	// provider "no data" verdicts).
	KindNotFound
	// KindMalformed covers unparseable or empty payloads; transient.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	default:
		return "other"
	}
}

// Error is a classified provider failure.
type Error struct {
	Kind   Kind
	Ticker string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Ticker, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Ticker, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from err, defaulting to KindOther.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindOther
}
