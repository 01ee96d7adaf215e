// Package quote defines the contract with the external market-data source.
package quote

import (
	"context"
	"time"
)

// Periods tried, in order, when a shorter window yields no usable data.
var Periods = []string{"1d", "5d", "1mo"}

// Bar is one closing-price observation.
type Bar struct {
	Time   time.Time
	Close  float64
	Volume int64
}

// Series is an ordered time series of closing prices for one ticker.
type Series []Bar

// LastClose returns the most recent positive close, if any.
func (s Series) LastClose() (float64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Close > 0 {
			return s[i].Close, true
		}
	}
	return 0, false
}

// PrevClose returns the close preceding the most recent positive close.
// Reported ok=false when the series has no usable previous bar.
func (s Series) PrevClose() (float64, bool) {
	last := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Close > 0 {
			if last >= 0 {
				return s[i].Close, true
			}
			last = i
		}
	}
	return 0, false
}

// LastVolume returns the volume of the most recent bar, when positive.
func (s Series) LastVolume() (int64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Volume > 0 {
			return s[i].Volume, true
		}
	}
	return 0, false
}

// Source fetches closing-price history from the external quote provider.
// Implementations classify failures via *Error so callers can pattern-match
// on Kind instead of inspecting error text.
//
//go:generate mockgen -package=mocks -destination=mocks/source.go -source=quote.go Source
type Source interface {
	// History returns closing prices for one ticker over a bounded window.
	History(ctx context.Context, ticker, period, interval string) (Series, error)
	// BatchHistory returns per-ticker series for several tickers at once.
	// A rate-limit failure aborts the whole batch; tickers that are missing
	// or delisted are skipped.
	BatchHistory(ctx context.Context, tickers []string, period string) (map[string]Series, error)
	// InfoFields is a best-effort metadata lookup (NAV fallback fields,
	// market volume). Failures are non-fatal and treated as "no fields".
	InfoFields(ctx context.Context, ticker string) (map[string]float64, error)
}
