package httpapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"goldetf/internal/compare"
	"goldetf/internal/fund"
	"goldetf/internal/valuation"
)

// FundService resolves fund quotes; implemented by valuation.Resolver.
type FundService interface {
	ResolveFund(ctx context.Context, symbol string) (fund.Quote, error)
	ResolveAll(ctx context.Context) []fund.Quote
}

// SpotService resolves the gram gold price; implemented by valuation.SpotResolver.
type SpotService interface {
	Resolve(ctx context.Context) (float64, error)
	Cached() (float64, bool)
}

// Handlers carries the wired services behind the HTTP surface.
type Handlers struct {
	funds     FundService
	spot      SpotService
	registry  *fund.Registry
	fundCache *valuation.Store[fund.Quote]
	spotCache *valuation.Store[float64]
	log       *zap.SugaredLogger
}

func NewHandlers(funds FundService, spot SpotService, registry *fund.Registry, fundCache *valuation.Store[fund.Quote], spotCache *valuation.Store[float64], log *zap.SugaredLogger) *Handlers {
	return &Handlers{
		funds:     funds,
		spot:      spot,
		registry:  registry,
		fundCache: fundCache,
		spotCache: spotCache,
		log:       log.Named("http"),
	}
}

// Index describes the service and its routes.
func (h *Handlers) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "gold-etf comparison API",
		"endpoints": gin.H{
			"compare":     "/api/gold-etf/compare",
			"compare_two": "/api/gold-etf/compare/{symbol1}/{symbol2}",
			"list":        "/api/gold-etf/list",
			"fund":        "/api/gold-etf/{symbol}",
			"debug":       "/api/gold-etf/debug/{symbol}",
			"clear_cache": "/api/gold-etf/clear-cache",
			"health":      "/health",
		},
	})
}

// Health reports cache occupancy and one sample cached fund.
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":           "ok",
		"fund_cache_items": h.fundCache.Len(),
		"spot_cache_items": h.spotCache.Len(),
	}
	for _, f := range h.registry.All() {
		if q, ok := h.fundCache.Get(valuation.CacheKey(f.Symbol)); ok {
			resp["sample_fund"] = gin.H{
				"symbol":       q.Symbol,
				"price":        q.CurrentPrice,
				"last_updated": q.LastUpdated,
			}
			break
		}
	}
	if spot, ok := h.spot.Cached(); ok {
		resp["gram_gold_price"] = spot
	}
	c.JSON(http.StatusOK, resp)
}

// ListFunds returns every resolvable fund. The list may be partial or empty
// when acquisition is degraded; that is not an error.
func (h *Handlers) ListFunds(c *gin.Context) {
	c.JSON(http.StatusOK, h.funds.ResolveAll(c.Request.Context()))
}

// GetFund resolves one fund by symbol.
func (h *Handlers) GetFund(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	q, err := h.funds.ResolveFund(c.Request.Context(), symbol)
	if err != nil {
		h.writeResolveError(c, symbol, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// CompareAll ranks every resolvable fund.
func (h *Handlers) CompareAll(c *gin.Context) {
	quotes := h.funds.ResolveAll(c.Request.Context())
	result, err := compare.Compare(quotes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no fund data currently available"})
		return
	}
	if spot, ok := h.spot.Cached(); ok {
		result.SpotGramGoldPrice = &spot
	} else if spot, err := h.spot.Resolve(c.Request.Context()); err == nil {
		result.SpotGramGoldPrice = &spot
	}
	c.JSON(http.StatusOK, result)
}

// CompareTwo compares exactly two funds head to head.
func (h *Handlers) CompareTwo(c *gin.Context) {
	sym1 := strings.ToUpper(c.Param("symbol1"))
	sym2 := strings.ToUpper(c.Param("symbol2"))

	q1, err := h.funds.ResolveFund(c.Request.Context(), sym1)
	if err != nil {
		h.writeResolveError(c, sym1, err)
		return
	}
	q2, err := h.funds.ResolveFund(c.Request.Context(), sym2)
	if err != nil {
		h.writeResolveError(c, sym2, err)
		return
	}
	c.JSON(http.StatusOK, compare.CompareTwo(q1, q2))
}

// DebugFund exposes the gold-backing derivation for one fund.
func (h *Handlers) DebugFund(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	f, ok := h.registry.Lookup(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown fund: " + symbol})
		return
	}

	q, err := h.funds.ResolveFund(c.Request.Context(), symbol)
	if err != nil {
		h.writeResolveError(c, symbol, err)
		return
	}

	resp := gin.H{
		"symbol":                  symbol,
		"configured_gold_backing": f.GoldBackingGrams,
		"current_gold_backing":    q.GoldBackingGrams,
		"nav_price":               q.NavPrice,
		"current_price":           q.CurrentPrice,
	}
	if spot, err := h.spot.Resolve(c.Request.Context()); err == nil {
		resp["gram_gold_price"] = spot
		if q.NavPrice != nil && spot > 0 {
			resp["calculated_backing"] = *q.NavPrice / spot
		}
	}

	dynamic := false
	if q.GoldBackingGrams != nil && f.GoldBackingGrams != nil {
		diff := *q.GoldBackingGrams - *f.GoldBackingGrams
		dynamic = diff != 0
		resp["difference"] = diff
		if *f.GoldBackingGrams > 0 {
			resp["difference_percent"] = math.Abs(diff) / *f.GoldBackingGrams * 100
		}
	}
	resp["is_dynamically_updated"] = dynamic

	c.JSON(http.StatusOK, resp)
}

// ClearCache empties both stores.
func (h *Handlers) ClearCache(c *gin.Context) {
	h.fundCache.Clear()
	h.spotCache.Clear()
	h.log.Infow("caches cleared by request")
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "caches cleared"})
}

// writeResolveError maps resolver errors onto HTTP statuses: unknown or
// inactive funds are 404, everything transient is 503.
func (h *Handlers) writeResolveError(c *gin.Context, symbol string, err error) {
	switch {
	case errors.Is(err, valuation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or inactive fund: " + symbol})
	case errors.Is(err, valuation.ErrRateLimited):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "fund data temporarily unavailable: " + symbol,
			"hint":  "rate limited by the data provider, retry shortly",
		})
	case errors.Is(err, valuation.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "fund data temporarily unavailable: " + symbol})
	default:
		h.log.Errorw("unexpected resolve error", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
