// Package ratelimit provides the process-wide gate that spaces outbound
// calls to the quote provider.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Gate enforces a minimum interval between calls. One shared instance gates
// every provider call (per-fund, batch and spot) so the aggregate request
// rate stays bounded. Waiters are admitted FIFO by arrival: each Acquire
// reserves the next free slot under the lock, then sleeps until the slot is
// due or the context is canceled.
type Gate struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Acquire blocks until at least the configured interval has elapsed since
// the start of the previous permitted call, then records the new call time.
func (g *Gate) Acquire(ctx context.Context) error {
	if g == nil || g.interval <= 0 {
		return nil
	}
	g.mu.Lock()
	now := time.Now()
	at := g.next
	if at.Before(now) {
		at = now
	}
	g.next = at.Add(g.interval)
	g.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
