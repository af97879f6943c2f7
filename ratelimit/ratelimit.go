package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// PolishCooldown is the minimum gap between two cleanup requests.
const PolishCooldown = 1500 * time.Millisecond

// RetrySleep is the wait before retry attempt n (1-based) of a throttled
// request: n seconds plus up to one second of jitter.
func RetrySleep(attempt int) time.Duration {
	attempt = max(attempt, 1)
	millis := attempt*1000 + rand.N(1000) //nolint:gosec
	return time.Duration(millis) * time.Millisecond
}

// Cooldown spaces out calls so that consecutive ones start at least
// interval apart.
type Cooldown struct {
	interval time.Duration
	mu       sync.Mutex
	next     time.Time
}

func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{interval: interval}
}

// Wait blocks until the caller may proceed or ctx is done.
func (c *Cooldown) Wait(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	start := c.next
	if start.Before(now) {
		start = now
	}
	c.next = start.Add(c.interval)
	c.mu.Unlock()

	d := time.Until(start)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
