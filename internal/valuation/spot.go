package valuation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"goldetf/internal/quote"
	"goldetf/internal/ratelimit"
)

const (
	gramsPerTroyOunce = 31.1034768
	spotCacheKey      = "gram_gold_price"

	// Plausibility band for the derived TL/gram price. A value outside it
	// means one of the upstream series was garbage; it is never cached.
	minGramPrice = 1000
	maxGramPrice = 20000
)

// SpotResolver derives the domestic-currency per-gram gold price from the
// gold futures quote (USD per troy ounce) and the USD/TRY exchange rate.
type SpotResolver struct {
	src     quote.Source
	gate    *ratelimit.Gate
	cache   *Store[float64]
	futures string
	fx      string
	log     *zap.SugaredLogger
}

func NewSpotResolver(src quote.Source, gate *ratelimit.Gate, cache *Store[float64], futuresTicker, fxTicker string, log *zap.SugaredLogger) *SpotResolver {
	if futuresTicker == "" {
		futuresTicker = "GC=F"
	}
	if fxTicker == "" {
		fxTicker = "USDTRY=X"
	}
	return &SpotResolver{src: src, gate: gate, cache: cache, futures: futuresTicker, fx: fxTicker, log: log.Named("spot")}
}

// Cached returns the cached gram price, if fresh.
func (r *SpotResolver) Cached() (float64, bool) {
	return r.cache.Get(spotCacheKey)
}

// Resolve returns the TL/gram gold price, recomputing on cache miss.
// A single failed attempt yields an error for this call; no retry happens
// here. The fund resolver is usually mid-retry and will call again on its
// own schedule.
func (r *SpotResolver) Resolve(ctx context.Context) (float64, error) {
	if cached, ok := r.cache.Get(spotCacheKey); ok {
		if cached > 0 {
			return cached, nil
		}
		// invalid cached price: evict and recompute
		r.log.Warnw("invalid cached gram gold price, recomputing", "cached", cached)
		r.cache.Delete(spotCacheKey)
	}

	if err := r.gate.Acquire(ctx); err != nil {
		return 0, err
	}
	goldHist, err := r.src.History(ctx, r.futures, "1d", "1m")
	if err != nil {
		return 0, fmt.Errorf("gold futures %s: %w", r.futures, err)
	}
	goldUSD, ok := goldHist.LastClose()
	if !ok {
		return 0, fmt.Errorf("gold futures %s: empty series", r.futures)
	}

	if err := r.gate.Acquire(ctx); err != nil {
		return 0, err
	}
	fxHist, err := r.src.History(ctx, r.fx, "1d", "1m")
	if err != nil {
		return 0, fmt.Errorf("fx rate %s: %w", r.fx, err)
	}
	fxRate, ok := fxHist.LastClose()
	if !ok {
		return 0, fmt.Errorf("fx rate %s: empty series", r.fx)
	}

	xauLocal := goldUSD * fxRate
	gramLocal := xauLocal / gramsPerTroyOunce
	if gramLocal < minGramPrice || gramLocal > maxGramPrice {
		return 0, fmt.Errorf("computed gram price %.2f outside plausible band [%d, %d]", gramLocal, minGramPrice, maxGramPrice)
	}

	r.log.Infow("gram gold price resolved",
		"gold_usd_oz", roundTo(goldUSD, 2),
		"usd_try", roundTo(fxRate, 4),
		"gram_try", roundTo(gramLocal, 2),
	)
	r.cache.Put(spotCacheKey, gramLocal)
	return gramLocal, nil
}
