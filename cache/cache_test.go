package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xeptore/beatpulse/cache"
)

func TestPolishedFetch(t *testing.T) {
	t.Parallel()

	c := cache.New()
	calls := 0
	fetch := func() (string, error) {
		calls++
		return "clean", nil
	}

	for range 2 {
		item, err := c.Polished.Fetch("prompt", time.Minute, fetch)
		require.NoError(t, err)
		require.Equal(t, "clean", item.Value())
	}
	require.Equal(t, 1, calls)
	require.Equal(t, 1, c.Polished.ItemCount())

	_, err := c.Polished.Fetch("other", time.Minute, func() (string, error) { return "", errors.New("boom") })
	require.Error(t, err)
	require.Equal(t, 1, c.Polished.ItemCount())
}
