package surf

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
)

type fakeProvider struct {
	name   string
	series ForecastSeries
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Fetch(ctx context.Context, _ geo.Coordinate, _ TimeWindow) (ForecastSeries, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	out := make(ForecastSeries, len(p.series))
	copy(out, p.series)
	return out, nil
}

type panicProvider struct{}

func (panicProvider) Name() string { return "panicky" }

func (panicProvider) Fetch(context.Context, geo.Coordinate, TimeWindow) (ForecastSeries, error) {
	panic("boom")
}

type mapCache struct {
	mu      sync.Mutex
	data    map[int64]ForecastSeries
	getErr  error
	putErr  error
	puts    int
	getHits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[int64]ForecastSeries)}
}

func (c *mapCache) Get(_ context.Context, id int64) (ForecastSeries, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.data[id]
	if ok {
		c.getHits++
	}
	return s, ok, nil
}

func (c *mapCache) Put(_ context.Context, id int64, s ForecastSeries) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.data[id] = append(c.data[id], s...)
	return nil
}

var errBoom = errors.New("boom")

var testSpot = Location{ID: 7, Name: "Test Beach", Latitude: 33.7701, Longitude: -118.1937, Difficulty: Beginner}
