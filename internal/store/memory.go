package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

// MemoryCatalog is a read-only in-memory spot catalog.
type MemoryCatalog struct {
	spots  []surf.Location // ordered by id
	byID   map[int64]int
	points []geo.Coordinate
}

// NewMemoryCatalog builds a catalog from spots. Spots without an id are
// numbered from 1 in input order.
func NewMemoryCatalog(spots []surf.Location) *MemoryCatalog {
	c := &MemoryCatalog{
		spots: make([]surf.Location, len(spots)),
		byID:  make(map[int64]int, len(spots)),
	}
	copy(c.spots, spots)
	for i := range c.spots {
		if c.spots[i].ID == 0 {
			c.spots[i].ID = int64(i + 1)
		}
	}
	sort.SliceStable(c.spots, func(i, j int) bool { return c.spots[i].ID < c.spots[j].ID })

	c.points = make([]geo.Coordinate, len(c.spots))
	for i, s := range c.spots {
		c.byID[s.ID] = i
		c.points[i] = s.Coordinate()
	}
	return c
}

// List returns all spots ordered by name.
func (c *MemoryCatalog) List(_ context.Context) ([]surf.Location, error) {
	out := make([]surf.Location, len(c.spots))
	copy(out, c.spots)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns the spot with the given id.
func (c *MemoryCatalog) Get(_ context.Context, id int64) (surf.Location, error) {
	i, ok := c.byID[id]
	if !ok {
		return surf.Location{}, fmt.Errorf("spot %d: %w", id, surf.ErrNotFound)
	}
	return c.spots[i], nil
}

// FindWithinRadius returns spots within radiusKm of center, nearest first.
func (c *MemoryCatalog) FindWithinRadius(_ context.Context, center geo.Coordinate, radiusKm float64) ([]surf.Candidate, error) {
	hits := geo.WithinRadius(center, radiusKm, c.points)
	out := make([]surf.Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, surf.Candidate{Location: c.spots[h.Index], DistanceKm: h.DistanceKm})
	}
	return out, nil
}

// MemoryPreferences is a concurrency-safe in-memory preference store.
type MemoryPreferences struct {
	mu sync.RWMutex

	// key: session id
	data map[string]surf.PreferenceProfile
}

// NewMemoryPreferences creates an empty preference store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{data: make(map[string]surf.PreferenceProfile)}
}

// SavePreferences inserts or replaces the profile for its session.
func (s *MemoryPreferences) SavePreferences(_ context.Context, p surf.PreferenceProfile) (surf.PreferenceProfile, error) {
	if p.Home != nil {
		home := *p.Home
		p.Home = &home
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[p.SessionID] = p
	return p, nil
}

// GetPreferences returns the profile saved for sessionID.
func (s *MemoryPreferences) GetPreferences(_ context.Context, sessionID string) (surf.PreferenceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[sessionID]
	if !ok {
		return surf.PreferenceProfile{}, fmt.Errorf("preferences for session %q: %w", sessionID, surf.ErrNotFound)
	}
	return p, nil
}
