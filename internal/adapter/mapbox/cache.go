package mapbox

import (
	"container/list"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climatescope/internal/domain"
	"github.com/couchcryptid/climatescope/internal/observability"
)

// CachedGeocoder memoizes country lookups in a bounded LRU cache. Misses and
// failures are remembered as "no location" for negativeTTL.
type CachedGeocoder struct {
	inner       domain.Geocoder
	cache       *lruCache
	negativeTTL time.Duration
	clock       clockwork.Clock
	metrics     *observability.Metrics
}

// NewCachedGeocoder wraps inner with a cache of at most maxEntries countries.
// A non-positive negativeTTL disables caching of misses and failures.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, negativeTTL time.Duration, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:       inner,
		cache:       newLRUCache(maxEntries),
		negativeTTL: negativeTTL,
		clock:       clockwork.NewRealClock(),
		metrics:     metrics,
	}
}

// LocateCountry serves from cache when possible. Keys ignore case and
// surrounding space.
func (c *CachedGeocoder) LocateCountry(ctx context.Context, country string) (domain.GeocodingResult, error) {
	key := strings.ToLower(strings.TrimSpace(country))
	if result, ok := c.cache.get(key, c.clock.Now()); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.LocateCountry(ctx, country)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return result, err
	case err != nil:
		c.putNegative(key)
		return result, err
	case result.PlaceName == "":
		c.putNegative(key)
		return result, nil
	}
	c.cache.put(key, result, time.Time{})
	return result, nil
}

func (c *CachedGeocoder) putNegative(key string) {
	if c.negativeTTL <= 0 {
		return
	}
	c.cache.put(key, domain.GeocodingResult{}, c.clock.Now().Add(c.negativeTTL))
}

type lruCache struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front is most recently used
	items      map[string]*list.Element
}

type cacheItem struct {
	key     string
	value   domain.GeocodingResult
	expires time.Time // zero never expires
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string, now time.Time) (domain.GeocodingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return domain.GeocodingResult{}, false
	}
	item := el.Value.(*cacheItem)
	if !item.expires.IsZero() && !now.Before(item.expires) {
		c.order.Remove(el)
		delete(c.items, key)
		return domain.GeocodingResult{}, false
	}
	c.order.MoveToFront(el)
	return item.value, true
}

func (c *lruCache) put(key string, value domain.GeocodingResult, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		item := el.Value.(*cacheItem)
		item.value = value
		item.expires = expires
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cacheItem{key: key, value: value, expires: expires})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
