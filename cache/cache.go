package cache

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

var DefaultPolishedTTL = 6 * time.Hour

type Cache struct {
	Polished PolishedCache
}

func New() *Cache {
	polishedCache := ccache.New(
		ccache.Configure[string]().
			MaxSize(500).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Cache{
		Polished: PolishedCache{
			c:   polishedCache,
			mux: sync.Mutex{},
		},
	}
}

// PolishedCache maps a cleanup prompt to the text the model returned for
// it. Fetch calls are serialized so that concurrent requests for the same
// prompt hit the API once.
type PolishedCache struct {
	c   *ccache.Cache[string]
	mux sync.Mutex
}

func (c *PolishedCache) Fetch(k string, ttl time.Duration, fetch func() (string, error)) (*ccache.Item[string], error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.c.Fetch(k, ttl, fetch)
}

func (c *PolishedCache) ItemCount() int {
	return c.c.ItemCount()
}
