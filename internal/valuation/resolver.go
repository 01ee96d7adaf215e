// Package valuation implements the price-acquisition pipeline: the fund
// resolver's fallback ladder, the fleet fetcher, the spot gold resolver and
// the time-boxed caches behind them.
package valuation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"goldetf/internal/fund"
	"goldetf/internal/quote"
	"goldetf/internal/ratelimit"
)

// Config bounds the resolver's retry behaviour.
type Config struct {
	// RetryCount is the number of attempts per ticker alias.
	RetryCount int
	// FleetPause is the fixed pause between sequential per-fund fetches in
	// the fleet fallback, on top of the rate-limiter spacing.
	FleetPause time.Duration
}

// Resolver acquires current prices and derived valuations for registered
// funds, caching every successful resolution.
type Resolver struct {
	registry   *fund.Registry
	src        quote.Source
	gate       *ratelimit.Gate
	spot       *SpotResolver
	cache      *Store[fund.Quote]
	retryCount int
	fleetPause time.Duration
	log        *zap.SugaredLogger

	// sleep is swapped out by tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewResolver(registry *fund.Registry, src quote.Source, gate *ratelimit.Gate, spot *SpotResolver, cache *Store[fund.Quote], cfg Config, log *zap.SugaredLogger) *Resolver {
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = 3
	}
	if cfg.FleetPause <= 0 {
		cfg.FleetPause = 3 * time.Second
	}
	return &Resolver{
		registry:   registry,
		src:        src,
		gate:       gate,
		spot:       spot,
		cache:      cache,
		retryCount: cfg.RetryCount,
		fleetPause: cfg.FleetPause,
		log:        log.Named("resolver"),
		sleep:      sleepCtx,
	}
}

// CacheKey is the fund-cache key for a symbol.
func CacheKey(symbol string) string {
	return "etf_" + strings.ToUpper(symbol)
}

// ladder outcomes for one alias attempt.
type outcome int

const (
	outcomeNone outcome = iota // no price, no classified failure: keep going
	outcomePrice
	outcomeRetryAlias   // backoff already decided by caller, retry same alias
	outcomeAbandonAlias // not found / delisted: next alias immediately
)

// ResolveFund resolves one fund by symbol. Returns ErrNotFound for unknown
// or inactive symbols and ErrUnavailable (possibly wrapping ErrRateLimited)
// when every alias and attempt is exhausted.
func (r *Resolver) ResolveFund(ctx context.Context, symbol string) (fund.Quote, error) {
	sym := strings.ToUpper(symbol)
	if q, ok := r.cache.Get(CacheKey(sym)); ok {
		return q, nil
	}

	f, ok := r.registry.Lookup(sym)
	if !ok {
		return fund.Quote{}, fmt.Errorf("%s: %w", sym, ErrNotFound)
	}
	if !f.Active {
		r.log.Infow("skipping inactive fund", "symbol", sym)
		return fund.Quote{}, fmt.Errorf("%s: %w", sym, ErrNotFound)
	}

	sawRateLimit := false

aliases:
	for _, alias := range fund.TickerFormats(f) {
		for attempt := 0; attempt < r.retryCount; attempt++ {
			if err := r.gate.Acquire(ctx); err != nil {
				return fund.Quote{}, err
			}

			// Download-style single-symbol call for the current day; often
			// succeeds where the plain history call does not.
			if series, err := r.download(ctx, alias); err == nil {
				if _, ok := series.LastClose(); ok {
					r.log.Infow("resolved via download", "symbol", sym, "alias", alias)
					return r.finish(ctx, f, series, false), nil
				}
			} else if quote.KindOf(err) == quote.KindRateLimited {
				sawRateLimit = true
			}

			// Per-symbol daily history across the period ladder.
			series, out, err := r.historyLadder(ctx, alias, attempt)
			if err != nil {
				return fund.Quote{}, err
			}
			switch out {
			case outcomePrice:
				r.log.Infow("resolved via history", "symbol", sym, "alias", alias)
				return r.finish(ctx, f, series, true), nil
			case outcomeRetryAlias:
				continue
			case outcomeAbandonAlias:
				r.log.Warnw("alias not found or delisted", "symbol", sym, "alias", alias)
				continue aliases
			}

			// Last resort for this alias: one more download attempt.
			if err := r.gate.Acquire(ctx); err != nil {
				return fund.Quote{}, err
			}
			series, dlErr := r.download(ctx, alias)
			if dlErr == nil {
				if _, ok := series.LastClose(); ok {
					r.log.Infow("resolved via fallback download", "symbol", sym, "alias", alias)
					return r.finish(ctx, f, series, false), nil
				}
				continue aliases // provider answered but has no price for this alias
			}
			switch quote.KindOf(dlErr) {
			case quote.KindRateLimited:
				sawRateLimit = true
				if attempt < r.retryCount-1 {
					wait := backoff(attempt, 3*time.Second)
					r.log.Warnw("rate limited, backing off", "symbol", sym, "alias", alias, "wait", wait)
					if err := r.sleep(ctx, wait); err != nil {
						return fund.Quote{}, err
					}
					continue
				}
				continue aliases
			case quote.KindMalformed, quote.KindNotFound:
				continue aliases
			}
		}
	}

	if sawRateLimit {
		return fund.Quote{}, fmt.Errorf("%s: %w: %w", sym, ErrUnavailable, ErrRateLimited)
	}
	return fund.Quote{}, fmt.Errorf("%s: %w", sym, ErrUnavailable)
}

// historyLadder walks the period sequence for one alias. Rate limiting and
// retryable malformed payloads sleep here and report outcomeRetryAlias; a
// not-found verdict abandons the alias without trying further periods.
func (r *Resolver) historyLadder(ctx context.Context, alias string, attempt int) (quote.Series, outcome, error) {
	for _, period := range quote.Periods {
		series, err := r.src.History(ctx, alias, period, "1d")
		if err != nil {
			if ctx.Err() != nil {
				return nil, outcomeNone, ctx.Err()
			}
			switch quote.KindOf(err) {
			case quote.KindRateLimited:
				wait := backoff(attempt, 2*time.Second)
				r.log.Warnw("history rate limited, backing off", "alias", alias, "period", period, "wait", wait)
				if serr := r.sleep(ctx, wait); serr != nil {
					return nil, outcomeNone, serr
				}
				return nil, outcomeRetryAlias, nil
			case quote.KindNotFound:
				return nil, outcomeAbandonAlias, nil
			case quote.KindMalformed:
				if attempt < r.retryCount-1 {
					r.log.Warnw("malformed payload, retrying alias", "alias", alias, "period", period)
					if serr := r.sleep(ctx, 5*time.Second); serr != nil {
						return nil, outcomeNone, serr
					}
					return nil, outcomeRetryAlias, nil
				}
				continue // out of retries: try the next period
			default:
				continue
			}
		}
		if _, ok := series.LastClose(); ok {
			return series, outcomePrice, nil
		}
	}
	return nil, outcomeNone, nil
}

// download performs the batched-style single-symbol acquisition.
func (r *Resolver) download(ctx context.Context, alias string) (quote.Series, error) {
	m, err := r.src.BatchHistory(ctx, []string{alias}, "1d")
	if err != nil {
		return nil, err
	}
	return m[alias], nil
}

// finish builds, caches and returns the resolved quote. withVolume is true
// only on the per-symbol history path; batch acquisitions do not carry a
// usable volume figure.
func (r *Resolver) finish(ctx context.Context, f fund.Fund, series quote.Series, withVolume bool) fund.Quote {
	q := r.buildQuote(ctx, f, series, withVolume)
	r.cache.Put(CacheKey(f.Symbol), q)
	return q
}

func (r *Resolver) buildQuote(ctx context.Context, f fund.Fund, series quote.Series, withVolume bool) fund.Quote {
	price, _ := series.LastClose()
	change := 0.0
	if prev, ok := series.PrevClose(); ok && prev > 0 {
		change = (price - prev) / prev * 100
	}

	var volume *int64
	if withVolume {
		if v, ok := series.LastVolume(); ok {
			volume = &v
		}
	}

	// Spot price is cached; a miss here only costs this pass its derived
	// figures, never the quote itself.
	var spot *float64
	if s, err := r.spot.Resolve(ctx); err == nil {
		spot = &s
	} else {
		r.log.Warnw("gram gold price unavailable", "symbol", f.Symbol, "error", err)
	}

	nav, backing := Derive(f.NavPrice, f.GoldBackingGrams, spot, nil)
	if nav == nil {
		if info, err := r.src.InfoFields(ctx, f.Ticker); err == nil {
			nav, backing = Derive(f.NavPrice, f.GoldBackingGrams, spot, info)
		}
	}
	if backing != nil && f.GoldBackingGrams != nil && *backing != *f.GoldBackingGrams {
		r.log.Infow("gold backing updated from NAV",
			"symbol", f.Symbol, "configured", *f.GoldBackingGrams, "derived", roundTo(*backing, 6))
	}

	return fund.Quote{
		Symbol:           strings.ToUpper(f.Symbol),
		Name:             f.Name,
		CurrentPrice:     roundTo(price, 4),
		ChangePercent:    roundTo(change, 2),
		Volume:           volume,
		LastUpdated:      time.Now().UTC(),
		GoldBackingGrams: roundPtr(backing, 6),
		NavPrice:         roundPtr(nav, 4),
		StopajRate:       f.StopajRate,
		ExpenseRatio:     f.ExpenseRatio,
	}
}

// backoff is exponential: base, 2x base, 4x base...
func backoff(attempt int, base time.Duration) time.Duration {
	return time.Duration(1<<attempt) * base
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
