package exporter

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// maxCacheEntries bounds the cache so request-supplied filters cannot
// grow it without limit.
const maxCacheEntries = 128

// Cached wraps a Renderer with a time-expiring render cache, keyed by
// the label filter. Under high scrape frequency this trades bounded
// staleness (at most the configured TTL) for skipping repeated
// formatting work. Expiry is purely time based; metric updates do not
// invalidate entries.
type Cached struct {
	renderer Renderer
	ttl      time.Duration

	mtx     sync.Mutex
	entries map[uint64]*cacheEntry
}

type cacheEntry struct {
	body string
	at   time.Time
}

// NewCached wraps r with a cache whose entries stay valid for ttl.
func NewCached(r Renderer, ttl time.Duration) (*Cached, error) {
	if ttl <= 0 {
		return nil, errors.Errorf("cache ttl must be positive, got %v", ttl)
	}
	return &Cached{
		renderer: r,
		ttl:      ttl,
		entries:  map[uint64]*cacheEntry{},
	}, nil
}

// TTL returns the configured freshness window.
func (c *Cached) TTL() time.Duration { return c.ttl }

// Render returns the cached body for the filter if it is younger than
// the TTL, delegating to the wrapped renderer otherwise. Bodies that
// rendered with errors are not cached, so a transient failure is not
// replayed for a whole TTL window.
func (c *Cached) Render(f Filter) (string, error) {
	key := xxhash.Sum64String(f.canonical())

	c.mtx.Lock()
	if e, ok := c.entries[key]; ok && time.Since(e.at) < c.ttl {
		c.mtx.Unlock()
		glog.V(1).Infof("Returning cached scrape for filter %q", f.canonical())
		return e.body, nil
	}
	c.mtx.Unlock()

	body, err := c.renderer.Render(f)
	if err != nil {
		return body, err
	}

	c.mtx.Lock()
	if len(c.entries) >= maxCacheEntries {
		c.evict()
	}
	c.entries[key] = &cacheEntry{body: body, at: time.Now()}
	c.mtx.Unlock()
	return body, nil
}

// evict drops expired entries, or everything if nothing has expired
// yet. Called with mtx held.
func (c *Cached) evict() {
	dropped := false
	for key, e := range c.entries {
		if time.Since(e.at) >= c.ttl {
			delete(c.entries, key)
			dropped = true
		}
	}
	if !dropped {
		c.entries = map[uint64]*cacheEntry{}
	}
}
