package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/beatpulse/ratelimit"
)

func TestRetrySleep(t *testing.T) {
	t.Parallel()

	for range 100 {
		ms := ratelimit.RetrySleep(2).Milliseconds()
		if ms < 2000 || ms >= 3000 {
			t.Errorf("expected 2000 <= ms < 3000, got %d", ms)
		}
	}
	assert.GreaterOrEqual(t, ratelimit.RetrySleep(0), time.Second)
}

func TestCooldown(t *testing.T) {
	t.Parallel()

	t.Run("spaces_calls", func(t *testing.T) {
		t.Parallel()

		c := ratelimit.NewCooldown(50 * time.Millisecond)
		start := time.Now()
		for range 3 {
			require.NoError(t, c.Wait(t.Context()))
		}
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("honors_context", func(t *testing.T) {
		t.Parallel()

		c := ratelimit.NewCooldown(time.Hour)
		require.NoError(t, c.Wait(t.Context()))

		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)
	})
}
