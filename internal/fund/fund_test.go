package fund_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"goldetf/internal/fund"
)

func f64(v float64) *float64 { return &v }

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := fund.NewRegistry([]fund.Fund{{Symbol: "ZGOLD", Ticker: "ZGOLD.IS", Active: true}})

	for _, sym := range []string{"ZGOLD", "zgold", "ZgOlD"} {
		f, ok := r.Lookup(sym)
		require.True(t, ok, sym)
		require.Equal(t, "ZGOLD", f.Symbol)
	}

	_, ok := r.Lookup("NOPE")
	require.False(t, ok)
}

func TestRegistryActiveFiltersAndPreservesOrder(t *testing.T) {
	t.Parallel()

	r := fund.NewRegistry([]fund.Fund{
		{Symbol: "ZGOLD", Active: true},
		{Symbol: "GLD", Active: false},
		{Symbol: "GLDTR", Active: true},
	})

	active := r.Active()
	require.Len(t, active, 2)
	require.Equal(t, "ZGOLD", active[0].Symbol)
	require.Equal(t, "GLDTR", active[1].Symbol)
	require.Len(t, r.All(), 3)
}

func TestTickerFormatsPrimaryThenAlternatives(t *testing.T) {
	t.Parallel()

	f := fund.Fund{Symbol: "ZGOLD", Ticker: "ZGOLD.IS", Alternatives: []string{"ZGOLD", "ZGOLD.IS"}}
	require.Equal(t, []string{"ZGOLD.IS", "ZGOLD"}, fund.TickerFormats(f))
}

func TestTickerFormatsTogglesMarketSuffix(t *testing.T) {
	t.Parallel()

	// a lone suffixed ticker gains a bare fallback
	f := fund.Fund{Symbol: "GLDTR", Ticker: "GLDTR.IS"}
	require.Equal(t, []string{"GLDTR.IS", "GLDTR"}, fund.TickerFormats(f))

	// and a lone bare ticker gains a suffixed one
	f = fund.Fund{Symbol: "GLDTR", Ticker: "GLDTR"}
	require.Equal(t, []string{"GLDTR", "GLDTR.IS"}, fund.TickerFormats(f))
}

func TestTickerFormatsNoToggleWithMultipleAliases(t *testing.T) {
	t.Parallel()

	f := fund.Fund{Symbol: "ZGOLD", Ticker: "ZGOLD.IS", Alternatives: []string{"ZGOLD.TI"}}
	require.Equal(t, []string{"ZGOLD.IS", "ZGOLD.TI"}, fund.TickerFormats(f))
}

func TestPerGram(t *testing.T) {
	t.Parallel()

	q := fund.Quote{Symbol: "ZGOLD", CurrentPrice: 45.5, GoldBackingGrams: f64(0.0981)}
	got, ok := q.PerGram()
	require.True(t, ok)
	require.InDelta(t, 45.5/0.0981, got, 1e-12)

	_, ok = fund.Quote{Symbol: "GLD", CurrentPrice: 45.5}.PerGram()
	require.False(t, ok)

	_, ok = fund.Quote{Symbol: "GLD", CurrentPrice: 45.5, GoldBackingGrams: f64(0)}.PerGram()
	require.False(t, ok)
}
