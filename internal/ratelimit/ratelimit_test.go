package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGate_FirstCallPassesImmediately(t *testing.T) {
	g := NewGate(3 * time.Second)

	start := time.Now()
	require.NoError(t, g.Acquire(context.Background()))
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestGate_SpacesConsecutiveCalls(t *testing.T) {
	interval := 50 * time.Millisecond
	g := NewGate(interval)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Acquire(context.Background()))
	}
	// first call is free, the next two wait one interval each
	require.GreaterOrEqual(t, time.Since(start), 2*interval)
}

func TestGate_CanceledContextReturnsEarly(t *testing.T) {
	g := NewGate(time.Hour)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGate_ZeroIntervalNeverBlocks(t *testing.T) {
	g := NewGate(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, g.Acquire(context.Background()))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)
}
