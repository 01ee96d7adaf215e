package valuation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveConfiguredNavWins(t *testing.T) {
	t.Parallel()

	nav, backing := Derive(ptr(626.702), ptr(0.0981), ptr(5000.0), map[string]float64{"navPrice": 999})
	require.NotNil(t, nav)
	require.Equal(t, 626.702, *nav)
	// backing recomputed from NAV and spot: 626.702 / 5000
	require.NotNil(t, backing)
	require.InDelta(t, 626.702/5000.0, *backing, 1e-12)
}

func TestDeriveNavFromBackingTimesSpot(t *testing.T) {
	t.Parallel()

	nav, backing := Derive(nil, ptr(0.1), ptr(5000.0), nil)
	require.NotNil(t, nav)
	require.InDelta(t, 500.0, *nav, 1e-12)
	require.NotNil(t, backing)
	require.InDelta(t, 0.1, *backing, 1e-12)
}

func TestDeriveImplausibleNavProductFallsThrough(t *testing.T) {
	t.Parallel()

	// 10 grams x 5000 TL = 50000 TL, outside the NAV band; metadata supplies it
	nav, _ := Derive(nil, ptr(10.0), ptr(5000.0), map[string]float64{"netAssetValue": 620.5})
	require.NotNil(t, nav)
	require.Equal(t, 620.5, *nav)

	// without metadata the NAV stays unresolved
	nav, _ = Derive(nil, ptr(10.0), ptr(5000.0), nil)
	require.Nil(t, nav)
}

func TestDeriveInfoKeyOrder(t *testing.T) {
	t.Parallel()

	nav, _ := Derive(nil, nil, nil, map[string]float64{"nav": 100, "navPrice": 200})
	require.NotNil(t, nav)
	require.Equal(t, 200.0, *nav)
}

func TestDeriveImplausibleBackingKeepsConfigured(t *testing.T) {
	t.Parallel()

	// 50000 / 5000 = 10 grams per unit, outside the backing band
	nav, backing := Derive(ptr(50000.0), ptr(0.0981), ptr(5000.0), nil)
	require.NotNil(t, nav)
	require.Equal(t, 50000.0, *nav)
	require.NotNil(t, backing)
	require.Equal(t, 0.0981, *backing)
}

func TestDeriveBackingOfOnePointFiveKeepsConfigured(t *testing.T) {
	t.Parallel()

	// 7500 / 5000 = 1.5 grams per unit, just above the plausible ceiling
	_, backing := Derive(ptr(7500.0), ptr(0.0981), ptr(5000.0), nil)
	require.NotNil(t, backing)
	require.Equal(t, 0.0981, *backing)
}

func TestDeriveTinyBackingKeepsConfigured(t *testing.T) {
	t.Parallel()

	// 10 / 5000 = 0.002 grams per unit, below the plausible floor
	_, backing := Derive(ptr(10.0), ptr(0.0981), ptr(5000.0), nil)
	require.NotNil(t, backing)
	require.Equal(t, 0.0981, *backing)
}

func TestDeriveNothingKnown(t *testing.T) {
	t.Parallel()

	nav, backing := Derive(nil, nil, nil, nil)
	require.Nil(t, nav)
	require.Nil(t, backing)
}

func TestDeriveNoSpotLeavesBackingConfigured(t *testing.T) {
	t.Parallel()

	nav, backing := Derive(ptr(626.702), ptr(0.0981), nil, nil)
	require.NotNil(t, nav)
	require.NotNil(t, backing)
	require.Equal(t, 0.0981, *backing)
}
