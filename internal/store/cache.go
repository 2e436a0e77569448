package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

// DefaultFreshness is how long a fetched forecast is served from cache.
const DefaultFreshness = 2 * time.Hour

type cacheEntry struct {
	fetchedAt time.Time
	samples   surf.ForecastSeries
	keys      map[surf.SampleKey]struct{}
}

// MemoryForecastCache keeps forecast series in process memory. Entries are
// immutable once stored; Put swaps in a new entry.
type MemoryForecastCache struct {
	// serializes read-modify-write in Put
	mu        sync.Mutex
	items     *gocache.Cache
	freshness time.Duration
	now       func() time.Time
}

// NewMemoryForecastCache creates a cache that serves entries for freshness.
func NewMemoryForecastCache(freshness time.Duration) *MemoryForecastCache {
	return newMemoryForecastCache(freshness, time.Now)
}

func newMemoryForecastCache(freshness time.Duration, now func() time.Time) *MemoryForecastCache {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &MemoryForecastCache{
		items:     gocache.New(freshness, freshness),
		freshness: freshness,
		now:       now,
	}
}

func cacheKey(locationID int64) string {
	return strconv.FormatInt(locationID, 10)
}

func (c *MemoryForecastCache) fresh(e *cacheEntry, now time.Time) bool {
	return now.Sub(e.fetchedAt) < c.freshness
}

// Get returns a copy of the live series for locationID.
func (c *MemoryForecastCache) Get(_ context.Context, locationID int64) (surf.ForecastSeries, bool, error) {
	v, ok := c.items.Get(cacheKey(locationID))
	if !ok {
		return nil, false, nil
	}
	e := v.(*cacheEntry)
	if !c.fresh(e, c.now()) {
		return nil, false, nil
	}
	out := make(surf.ForecastSeries, len(e.samples))
	copy(out, e.samples)
	return out, true, nil
}

// Put merges series into the live entry for locationID. Samples whose
// (source, time) is already stored are ignored. An expired entry is replaced.
func (c *MemoryForecastCache) Put(_ context.Context, locationID int64, series surf.ForecastSeries) error {
	if len(series) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	key := cacheKey(locationID)

	next := &cacheEntry{fetchedAt: now, keys: make(map[surf.SampleKey]struct{}, len(series))}
	if v, ok := c.items.Get(key); ok {
		if prev := v.(*cacheEntry); c.fresh(prev, now) {
			next.fetchedAt = prev.fetchedAt
			next.samples = append(next.samples, prev.samples...)
			for k := range prev.keys {
				next.keys[k] = struct{}{}
			}
		}
	}

	for _, s := range series {
		k := s.Key()
		if _, dup := next.keys[k]; dup {
			continue
		}
		next.keys[k] = struct{}{}
		next.samples = append(next.samples, s)
	}
	// Stable: equal timestamps keep insertion order.
	sort.SliceStable(next.samples, func(i, j int) bool {
		return next.samples[i].Time.Before(next.samples[j].Time)
	})

	c.items.Set(key, next, c.freshness-now.Sub(next.fetchedAt))
	return nil
}
