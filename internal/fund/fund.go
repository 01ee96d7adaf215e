// Package fund holds the static gold-ETF registry and the resolved quote record.
package fund

import (
	"strings"
	"time"
)

const marketSuffix = ".IS"

// Quote is the resolved, cached record for one fund.
// Optional figures are pointers so absent values serialize as null.
type Quote struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	CurrentPrice     float64   `json:"current_price"`
	ChangePercent    float64   `json:"change_percent"`
	Volume           *int64    `json:"volume"`
	LastUpdated      time.Time `json:"last_updated"`
	GoldBackingGrams *float64  `json:"gold_backing_grams"`
	NavPrice         *float64  `json:"nav_price"`
	StopajRate       *float64  `json:"stopaj_rate"`
	ExpenseRatio     *float64  `json:"expense_ratio"`
}

// PerGram returns the cost of one gram of gold exposure, when backing is known.
func (q Quote) PerGram() (float64, bool) {
	if q.GoldBackingGrams == nil || *q.GoldBackingGrams <= 0 {
		return 0, false
	}
	return q.CurrentPrice / *q.GoldBackingGrams, true
}

// Fund is one immutable registry entry.
type Fund struct {
	Symbol           string
	Name             string
	Ticker           string
	Alternatives     []string
	GoldBackingGrams *float64
	NavPrice         *float64
	StopajRate       *float64
	ExpenseRatio     *float64
	Active           bool
}

// Registry is the ordered, read-only set of tracked funds.
type Registry struct {
	funds []Fund
	index map[string]int
}

func NewRegistry(funds []Fund) *Registry {
	r := &Registry{funds: funds, index: make(map[string]int, len(funds))}
	for i, f := range funds {
		r.index[strings.ToUpper(f.Symbol)] = i
	}
	return r
}

// Lookup finds a fund by symbol, case-insensitively.
func (r *Registry) Lookup(symbol string) (Fund, bool) {
	i, ok := r.index[strings.ToUpper(symbol)]
	if !ok {
		return Fund{}, false
	}
	return r.funds[i], true
}

// All returns every entry in registry order.
func (r *Registry) All() []Fund { return r.funds }

// Active returns the active entries in registry order. Inactive (possibly
// delisted) funds are never queried.
func (r *Registry) Active() []Fund {
	out := make([]Fund, 0, len(r.funds))
	for _, f := range r.funds {
		if f.Active {
			out = append(out, f)
		}
	}
	return out
}

// TickerFormats returns the ordered, de-duplicated list of ticker aliases to
// try for a fund: primary ticker first, then configured alternatives. When
// fewer than two aliases exist, the market suffix is toggled on the primary
// as a heuristic fallback.
func TickerFormats(f Fund) []string {
	formats := make([]string, 0, len(f.Alternatives)+2)
	if f.Ticker != "" {
		formats = append(formats, f.Ticker)
	}
	formats = append(formats, f.Alternatives...)

	if len(formats) <= 1 {
		base := strings.ToUpper(f.Symbol)
		if len(formats) > 0 && strings.HasSuffix(formats[0], marketSuffix) {
			formats = append(formats, base)
		} else if len(formats) > 0 {
			formats = append(formats, base+marketSuffix)
		}
	}

	seen := make(map[string]struct{}, len(formats))
	unique := formats[:0]
	for _, t := range formats {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}
