package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goldetf/internal/fund"
	"goldetf/internal/httpapi"
	"goldetf/internal/valuation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func f64(v float64) *float64 { return &v }

type fakeFunds struct {
	quotes map[string]fund.Quote
	errs   map[string]error
	all    []fund.Quote
}

func (f *fakeFunds) ResolveFund(_ context.Context, symbol string) (fund.Quote, error) {
	if err, ok := f.errs[symbol]; ok {
		return fund.Quote{}, err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return fund.Quote{}, fmt.Errorf("%s: %w", symbol, valuation.ErrNotFound)
	}
	return q, nil
}

func (f *fakeFunds) ResolveAll(context.Context) []fund.Quote { return f.all }

type fakeSpot struct {
	cached     *float64
	resolved   float64
	resolveErr error
}

func (s *fakeSpot) Cached() (float64, bool) {
	if s.cached == nil {
		return 0, false
	}
	return *s.cached, true
}

func (s *fakeSpot) Resolve(context.Context) (float64, error) {
	return s.resolved, s.resolveErr
}

type fixture struct {
	router    *gin.Engine
	fundCache *valuation.Store[fund.Quote]
	spotCache *valuation.Store[float64]
}

func newFixture(funds httpapi.FundService, spot httpapi.SpotService) *fixture {
	registry := fund.NewRegistry([]fund.Fund{
		{Symbol: "ZGOLD", Name: "Ziraat Portfoy Altin Katilim BYF", Ticker: "ZGOLD.IS", GoldBackingGrams: f64(0.0981), Active: true},
		{Symbol: "GLDTR", Name: "QNB Finans Portfoy Altin BYF", Ticker: "GLDTR.IS", GoldBackingGrams: f64(0.085), Active: true},
	})
	fundCache := valuation.NewStore[fund.Quote](time.Minute, 100)
	spotCache := valuation.NewStore[float64](time.Minute, 10)
	h := httpapi.NewHandlers(funds, spot, registry, fundCache, spotCache, zap.NewNop().Sugar())
	return &fixture{router: httpapi.NewRouter(h), fundCache: fundCache, spotCache: spotCache}
}

func (f *fixture) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	if len(rec.Body.Bytes()) > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func zgoldQuote() fund.Quote {
	return fund.Quote{
		Symbol:           "ZGOLD",
		Name:             "Ziraat Portfoy Altin Katilim BYF",
		CurrentPrice:     45.5,
		ChangePercent:    1.51,
		LastUpdated:      time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		GoldBackingGrams: f64(0.0981),
		NavPrice:         f64(626.702),
	}
}

func TestGetFund(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{quotes: map[string]fund.Quote{"ZGOLD": zgoldQuote()}}, &fakeSpot{})

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/zgold")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ZGOLD", body["symbol"])
	require.Equal(t, 45.5, body["current_price"])
}

func TestGetFundNotFound(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{}, &fakeSpot{})

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/NOPE")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, body["error"], "NOPE")
}

func TestGetFundRateLimitedCarriesHint(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ZGOLD: %w: %w", valuation.ErrUnavailable, valuation.ErrRateLimited)
	fx := newFixture(&fakeFunds{errs: map[string]error{"ZGOLD": err}}, &fakeSpot{})

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/ZGOLD")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, body["hint"], "rate limited")
}

func TestGetFundUnavailable(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ZGOLD: %w", valuation.ErrUnavailable)
	fx := newFixture(&fakeFunds{errs: map[string]error{"ZGOLD": err}}, &fakeSpot{})

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/ZGOLD")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, body, "hint")
}

func TestListFunds(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{all: []fund.Quote{zgoldQuote()}}, &fakeSpot{})

	req := httptest.NewRequest(http.MethodGet, "/api/gold-etf/list", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []fund.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "ZGOLD", list[0].Symbol)
}

func TestListFundsEmptyIsNotAnError(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{all: []fund.Quote{}}, &fakeSpot{})

	rec, _ := fx.do(t, http.MethodGet, "/api/gold-etf/list")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", rec.Body.String())
}

func TestCompareAll(t *testing.T) {
	t.Parallel()

	gldtr := fund.Quote{Symbol: "GLDTR", CurrentPrice: 38.25, GoldBackingGrams: f64(0.085)}
	fx := newFixture(&fakeFunds{all: []fund.Quote{zgoldQuote(), gldtr}}, &fakeSpot{cached: f64(4500.0)})

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/compare")
	require.Equal(t, http.StatusOK, rec.Code)

	cheapest := body["cheapest"].(map[string]any)
	require.Equal(t, "GLDTR", cheapest["symbol"]) // 450 vs ~463.8 TL/gram
	require.Equal(t, 4500.0, body["spot_gram_gold_price"])
	require.NotEmpty(t, body["recommendation"])
}

func TestCompareAllNoDataIs503(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{}, &fakeSpot{})

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/compare")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, body["error"], "no fund data")
}

func TestCompareTwo(t *testing.T) {
	t.Parallel()

	gldtr := fund.Quote{Symbol: "GLDTR", CurrentPrice: 38.25, GoldBackingGrams: f64(0.085)}
	fx := newFixture(&fakeFunds{quotes: map[string]fund.Quote{"ZGOLD": zgoldQuote(), "GLDTR": gldtr}}, &fakeSpot{})

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/compare/zgold/gldtr")
	require.Equal(t, http.StatusOK, rec.Code)

	cheaper := body["cheaper"].(map[string]any)
	require.Equal(t, "GLDTR", cheaper["symbol"])
	require.NotNil(t, body["per_gram_comparison"])
}

func TestCompareTwoUnknownSymbol(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{quotes: map[string]fund.Quote{"ZGOLD": zgoldQuote()}}, &fakeSpot{})

	rec, _ := fx.do(t, http.MethodGet, "/api/gold-etf/compare/ZGOLD/NOPE")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugFund(t *testing.T) {
	t.Parallel()

	fx := newFixture(
		&fakeFunds{quotes: map[string]fund.Quote{"ZGOLD": zgoldQuote()}},
		&fakeSpot{resolved: 5000.0},
	)

	rec, body := fx.do(t, http.MethodGet, "/api/gold-etf/debug/ZGOLD")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0.0981, body["configured_gold_backing"])
	require.Equal(t, 5000.0, body["gram_gold_price"])
	require.InDelta(t, 626.702/5000.0, body["calculated_backing"].(float64), 1e-9)
	require.Equal(t, false, body["is_dynamically_updated"])
}

func TestDebugFundUnknown(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{}, &fakeSpot{})

	rec, _ := fx.do(t, http.MethodGet, "/api/gold-etf/debug/NOPE")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearCacheEmptiesBothStores(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{}, &fakeSpot{})
	fx.fundCache.Put(valuation.CacheKey("ZGOLD"), zgoldQuote())
	fx.spotCache.Put("gram_gold_price", 4500.0)

	rec, _ := fx.do(t, http.MethodPost, "/api/gold-etf/clear-cache")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, fx.fundCache.Len())
	require.Zero(t, fx.spotCache.Len())
}

func TestHealthReportsCachesAndSample(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{}, &fakeSpot{cached: f64(4500.0)})
	fx.fundCache.Put(valuation.CacheKey("GLDTR"), fund.Quote{Symbol: "GLDTR", CurrentPrice: 38.25})

	rec, body := fx.do(t, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, 1.0, body["fund_cache_items"])
	require.Equal(t, 4500.0, body["gram_gold_price"])

	sample := body["sample_fund"].(map[string]any)
	require.Equal(t, "GLDTR", sample["symbol"])
}

func TestIndexListsEndpoints(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{}, &fakeSpot{})

	rec, body := fx.do(t, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, body["endpoints"])
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	fx := newFixture(&fakeFunds{}, &fakeSpot{})

	rec, _ := fx.do(t, http.MethodOptions, "/api/gold-etf/list")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
