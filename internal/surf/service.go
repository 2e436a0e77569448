package surf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
)

// DefaultRadiusKm is the search radius used when neither the request nor the
// profile provides one.
const DefaultRadiusKm = 50.0

// Service is the inbound API of the core: spot lookup, preferences, forecasts
// and ranking.
type Service struct {
	catalog     Catalog
	preferences PreferenceStore
	aggregator  *Aggregator
	ranker      *Ranker
	now         func() time.Time
}

// NewService creates a new Service.
func NewService(catalog Catalog, preferences PreferenceStore, aggregator *Aggregator, ranker *Ranker) *Service {
	return &Service{
		catalog:     catalog,
		preferences: preferences,
		aggregator:  aggregator,
		ranker:      ranker,
		now:         time.Now,
	}
}

// Rank finds spots within radiusKm of origin and orders them for profile.
// It fails only on invalid input or when the catalog is unavailable.
func (s *Service) Rank(ctx context.Context, profile PreferenceProfile, origin geo.Coordinate, radiusKm float64) ([]ScoredCandidate, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	if !origin.Valid() {
		return nil, fmt.Errorf("%w: origin coordinate out of range", ErrInvalidInput)
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidInput)
	}

	candidates, err := s.catalog.FindWithinRadius(ctx, origin, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("finding spots: %w", err)
	}
	if len(candidates) == 0 {
		return []ScoredCandidate{}, nil
	}

	return s.ranker.Rank(ctx, profile, candidates), nil
}

// RankRequest is a ranking query on behalf of a stored session.
type RankRequest struct {
	SessionID string
	Origin    *geo.Coordinate
	RadiusKm  float64
}

// RankForSession ranks spots using the stored preferences of a session. The
// origin falls back to the profile's home and the radius to the profile's max
// distance.
func (s *Service) RankForSession(ctx context.Context, req RankRequest) ([]ScoredCandidate, PreferenceProfile, error) {
	if req.SessionID == "" {
		return nil, PreferenceProfile{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	profile, err := s.preferences.GetPreferences(ctx, req.SessionID)
	if err != nil {
		return nil, PreferenceProfile{}, err
	}

	origin := req.Origin
	if origin == nil {
		origin = profile.Home
	}
	if origin == nil {
		return nil, profile, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	radius := req.RadiusKm
	if radius <= 0 {
		radius = profile.MaxDistanceKm
	}
	if radius <= 0 {
		radius = DefaultRadiusKm
	}

	ranked, err := s.Rank(ctx, profile, *origin, radius)
	return ranked, profile, err
}

// ForecastFor returns a spot and its forecast series.
func (s *Service) ForecastFor(ctx context.Context, locationID int64) (Location, ForecastSeries, error) {
	loc, err := s.catalog.Get(ctx, locationID)
	if err != nil {
		return Location{}, nil, err
	}
	series, err := s.aggregator.ForecastFor(ctx, loc)
	if err != nil {
		return loc, nil, err
	}
	return loc, series, nil
}

// CurrentConditions returns the current conditions for each known spot id.
// Unknown ids are skipped.
func (s *Service) CurrentConditions(ctx context.Context, ids []int64) ([]SpotConditions, error) {
	out := make([]SpotConditions, 0, len(ids))
	for _, id := range ids {
		loc, series, err := s.ForecastFor(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
				continue
			}
			log.Error().Err(err).Int64("location", id).Msg("conditions lookup failed")
			continue
		}

		now := s.now()
		out = append(out, SpotConditions{
			SpotID:      loc.ID,
			SpotName:    loc.Name,
			Conditions:  CurrentConditions(series, now),
			LastUpdated: now.UTC(),
		})
	}
	return out, nil
}

// Spots lists the catalog.
func (s *Service) Spots(ctx context.Context) ([]Location, error) {
	return s.catalog.List(ctx)
}

// Spot returns one catalog entry.
func (s *Service) Spot(ctx context.Context, id int64) (Location, error) {
	return s.catalog.Get(ctx, id)
}

// Nearby returns catalog entries within radiusKm of center.
func (s *Service) Nearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Candidate, error) {
	if !center.Valid() {
		return nil, fmt.Errorf("%w: coordinate out of range", ErrInvalidInput)
	}
	return s.catalog.FindWithinRadius(ctx, center, radiusKm)
}

// SavePreferences validates and upserts a profile.
func (s *Service) SavePreferences(ctx context.Context, p PreferenceProfile) (PreferenceProfile, error) {
	if err := ValidateProfile(p); err != nil {
		return PreferenceProfile{}, err
	}
	p.UpdatedAt = s.now().UTC()
	return s.preferences.SavePreferences(ctx, p)
}

// Preferences returns the stored profile for a session.
func (s *Service) Preferences(ctx context.Context, sessionID string) (PreferenceProfile, error) {
	if sessionID == "" {
		return PreferenceProfile{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	return s.preferences.GetPreferences(ctx, sessionID)
}

// Warm fetches the forecast of a single spot unless a fresh one is already
// cached.
func (s *Service) Warm(ctx context.Context, loc Location) error {
	_, err := s.aggregator.ForecastFor(ctx, loc)
	return err
}
