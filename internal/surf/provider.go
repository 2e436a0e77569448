package surf

import (
	"context"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
)

// Provider abstracts an external forecast source (e.g. Stormglass, OpenWeatherMap, Open-Meteo).
// Implementations normalize their wire format into ConditionSamples tagged with Name().
type Provider interface {
	Name() string
	Fetch(ctx context.Context, at geo.Coordinate, window TimeWindow) (ForecastSeries, error)
}

// ForecastCache is a location-scoped, time-bounded store of forecast samples.
// Get reports false for absent or expired entries. Put is idempotent per
// (location, source, time) tuple.
type ForecastCache interface {
	Get(ctx context.Context, locationID int64) (ForecastSeries, bool, error)
	Put(ctx context.Context, locationID int64, series ForecastSeries) error
}

// Catalog is the read-only spot reference data.
type Catalog interface {
	List(ctx context.Context) ([]Location, error)
	Get(ctx context.Context, id int64) (Location, error)
	FindWithinRadius(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Candidate, error)
}

// PreferenceStore persists preference profiles keyed by session id.
type PreferenceStore interface {
	SavePreferences(ctx context.Context, p PreferenceProfile) (PreferenceProfile, error)
	GetPreferences(ctx context.Context, sessionID string) (PreferenceProfile, error)
}
