package valuation

import (
	"context"
	"errors"

	"goldetf/internal/fund"
	"goldetf/internal/quote"
)

// ResolveAll resolves every active fund. It prefers one batched provider
// call, falls back to sequential per-fund resolution, and finally to
// whatever the cache still holds. The result may be partial or empty;
// callers treat an empty list as "temporarily no data", not a hard error.
func (r *Resolver) ResolveAll(ctx context.Context) []fund.Quote {
	active := r.registry.Active()
	if len(active) == 0 {
		return []fund.Quote{}
	}

	if quotes := r.resolveBatch(ctx, active); len(quotes) > 0 {
		return quotes
	}

	// Sequential fallback with a fixed pause between funds, on top of the
	// rate-limiter spacing; bulk retries deserve extra conservatism.
	r.log.Warn("batch fetch yielded nothing, falling back to per-fund resolution")
	out := make([]fund.Quote, 0, len(active))
	for i, f := range active {
		if i > 0 {
			if err := r.sleep(ctx, r.fleetPause); err != nil {
				break
			}
		}
		q, err := r.ResolveFund(ctx, f.Symbol)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				r.log.Warnw("fund unresolved in fleet pass", "symbol", f.Symbol, "error", err)
			}
			continue
		}
		out = append(out, q)
	}
	if len(out) > 0 {
		return out
	}

	// Last resort: stale-but-available cache entries for active symbols.
	// An already-evicted entry is simply absent and excluded.
	for _, f := range active {
		if q, ok := r.cache.GetStale(CacheKey(f.Symbol)); ok {
			out = append(out, q)
		}
	}
	if len(out) > 0 {
		r.log.Warn("returning cached fund data; live acquisition failed")
	}
	return out
}

// resolveBatch attempts one batched multi-symbol acquisition across the
// period ladder. A rate-limit signal aborts the whole batch path; a period
// without data just advances to the next period.
func (r *Resolver) resolveBatch(ctx context.Context, active []fund.Fund) []fund.Quote {
	tickers := make([]string, 0, len(active))
	for _, f := range active {
		tickers = append(tickers, f.Ticker)
	}

	if err := r.gate.Acquire(ctx); err != nil {
		return nil
	}

	var data map[string]quote.Series
	for _, period := range quote.Periods {
		m, err := r.src.BatchHistory(ctx, tickers, period)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if quote.KindOf(err) == quote.KindRateLimited {
				r.log.Warnw("batch fetch rate limited, abandoning batch path", "period", period)
				return nil
			}
			r.log.Debugw("batch fetch failed for period", "period", period, "error", err)
			continue
		}
		if len(m) > 0 {
			data = m
			break
		}
	}
	if data == nil {
		return nil
	}

	out := make([]fund.Quote, 0, len(active))
	for _, f := range active {
		series := data[f.Ticker]
		if _, ok := series.LastClose(); !ok {
			continue
		}
		out = append(out, r.finish(ctx, f, series, false))
	}
	return out
}
