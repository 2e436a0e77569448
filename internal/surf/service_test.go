package surf_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/store"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

type staticProvider struct {
	sample surf.ConditionSample
}

func (p staticProvider) Name() string { return "static" }

func (p staticProvider) Fetch(_ context.Context, _ geo.Coordinate, w surf.TimeWindow) (surf.ForecastSeries, error) {
	s := p.sample
	s.Time = w.Start
	return surf.ForecastSeries{s}, nil
}

var serviceSpots = []surf.Location{
	{Name: "Huntington Beach Pier", Latitude: 33.6553, Longitude: -118.0036, Region: "Orange County", BreakType: surf.BreakBeach, Difficulty: surf.Intermediate},
	{Name: "Long Beach Peninsula", Latitude: 33.7701, Longitude: -118.1937, Region: "Los Angeles County", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Mavericks", Latitude: 37.4951, Longitude: -122.4968, Region: "San Mateo County", BreakType: surf.BreakReef, Difficulty: surf.Advanced},
}

func newTestService(t *testing.T) (*surf.Service, *store.MemoryPreferences) {
	t.Helper()
	catalog := store.NewMemoryCatalog(serviceSpots)
	prefs := store.NewMemoryPreferences()
	agg := surf.NewAggregator(
		store.NewMemoryForecastCache(time.Hour),
		[]surf.Provider{staticProvider{sample: surf.ConditionSample{WaveHeight: 3.5, WavePeriod: 12, WindSpeed: 4, WindDirection: 90}}},
		surf.AggregatorConfig{ProviderTimeout: time.Second},
	)
	return surf.NewService(catalog, prefs, agg, surf.NewRanker(agg, 2, nil)), prefs
}

func validProfile() surf.PreferenceProfile {
	return surf.PreferenceProfile{
		SessionID:     "session-1",
		SkillLevel:    surf.Beginner,
		MinWaveHeight: 2,
		MaxWaveHeight: 5,
		MaxWindSpeed:  15,
		MaxDistanceKm: 50,
	}
}

func TestServiceRankRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	origin := geo.Coordinate{Lat: 33.7, Lng: -118.1}

	bad := validProfile()
	bad.MinWaveHeight, bad.MaxWaveHeight = 5, 5
	_, err := svc.Rank(ctx, bad, origin, 50)
	assert.ErrorIs(t, err, surf.ErrInvalidInput)

	_, err = svc.Rank(ctx, validProfile(), geo.Coordinate{Lat: 91}, 50)
	assert.ErrorIs(t, err, surf.ErrInvalidInput)

	_, err = svc.Rank(ctx, validProfile(), origin, 0)
	assert.ErrorIs(t, err, surf.ErrInvalidInput)
}

func TestServiceRankNothingNearby(t *testing.T) {
	svc, _ := newTestService(t)

	ranked, err := svc.Rank(context.Background(), validProfile(), geo.Coordinate{}, 50)
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestServiceRankOrdersNearbySpots(t *testing.T) {
	svc, _ := newTestService(t)

	ranked, err := svc.Rank(context.Background(), validProfile(), geo.Coordinate{Lat: 33.7701, Lng: -118.1937}, 50)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "Long Beach Peninsula", ranked[0].Location.Name)
	assert.Equal(t, "Huntington Beach Pier", ranked[1].Location.Name)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, 3.5, ranked[0].Conditions.WaveHeight)
	assert.Equal(t, "static", ranked[0].Conditions.Source)
}

func TestServiceRankForSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.RankForSession(ctx, surf.RankRequest{SessionID: "unknown"})
	assert.ErrorIs(t, err, surf.ErrNotFound)

	_, _, err = svc.RankForSession(ctx, surf.RankRequest{})
	assert.ErrorIs(t, err, surf.ErrInvalidInput)

	_, err = svc.SavePreferences(ctx, validProfile())
	require.NoError(t, err)

	// No origin given and no home stored.
	_, _, err = svc.RankForSession(ctx, surf.RankRequest{SessionID: "session-1"})
	assert.ErrorIs(t, err, surf.ErrInvalidInput)

	ranked, profile, err := svc.RankForSession(ctx, surf.RankRequest{
		SessionID: "session-1",
		Origin:    &geo.Coordinate{Lat: 37.5, Lng: -122.5},
	})
	require.NoError(t, err)
	assert.Equal(t, surf.Beginner, profile.SkillLevel)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Mavericks", ranked[0].Location.Name)
	assert.Zero(t, ranked[0].Scores.Skill)

	home := validProfile()
	home.Home = &geo.Coordinate{Lat: 33.66, Lng: -118.0}
	home.MaxDistanceKm = 5
	_, err = svc.SavePreferences(ctx, home)
	require.NoError(t, err)

	ranked, _, err = svc.RankForSession(ctx, surf.RankRequest{SessionID: "session-1"})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Huntington Beach Pier", ranked[0].Location.Name)

	// An explicit radius wins over the profile's max distance.
	ranked, _, err = svc.RankForSession(ctx, surf.RankRequest{SessionID: "session-1", RadiusKm: 100})
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestServiceSavePreferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bad := validProfile()
	bad.MinWaveHeight = 6
	_, err := svc.SavePreferences(ctx, bad)
	assert.ErrorIs(t, err, surf.ErrInvalidInput)

	bad = validProfile()
	bad.SkillLevel = "pro"
	_, err = svc.SavePreferences(ctx, bad)
	assert.ErrorIs(t, err, surf.ErrInvalidInput)

	saved, err := svc.SavePreferences(ctx, validProfile())
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := svc.Preferences(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.MaxWindSpeed)

	_, err = svc.Preferences(ctx, "")
	assert.ErrorIs(t, err, surf.ErrInvalidInput)
}

func TestServiceForecastFor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	loc, series, err := svc.ForecastFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loc.ID)
	assert.Len(t, series, 1)

	_, _, err = svc.ForecastFor(ctx, 999)
	assert.ErrorIs(t, err, surf.ErrNotFound)
}

func TestServiceCurrentConditionsSkipsUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.CurrentConditions(context.Background(), []int64{1, 404, 3})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].SpotID)
	assert.Equal(t, int64(3), out[1].SpotID)
	assert.Equal(t, 12.0, out[0].Conditions.WavePeriod)
}

func TestServiceNearby(t *testing.T) {
	svc, _ := newTestService(t)

	hits, err := svc.Nearby(context.Background(), geo.Coordinate{Lat: 33.7, Lng: -118.1}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = svc.Nearby(context.Background(), geo.Coordinate{Lat: 0, Lng: 200}, 50)
	assert.ErrorIs(t, err, surf.ErrInvalidInput)
}

type tiedProvider struct {
	name  string
	wind  float64
	delay time.Duration
}

func (p tiedProvider) Name() string { return p.name }

func (p tiedProvider) Fetch(_ context.Context, _ geo.Coordinate, w surf.TimeWindow) (surf.ForecastSeries, error) {
	time.Sleep(p.delay)
	at := w.Start.UTC().Truncate(time.Hour)
	return surf.ForecastSeries{{Time: at, WaveHeight: 4, WindSpeed: p.wind, WindDirection: 270}}, nil
}

func TestCachedConditionsMatchLive(t *testing.T) {
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "surf.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	caches := map[string]surf.ForecastCache{
		"memory": store.NewMemoryForecastCache(time.Hour),
		"sqlite": db.ForecastCache(),
	}
	for name, cache := range caches {
		t.Run(name, func(t *testing.T) {
			agg := surf.NewAggregator(cache, []surf.Provider{
				tiedProvider{name: "stormglass", wind: 14, delay: 30 * time.Millisecond},
				tiedProvider{name: "openmeteo"},
			}, surf.AggregatorConfig{ProviderTimeout: time.Second})
			loc := surf.Location{ID: 1, Latitude: 33.77, Longitude: -118.19}
			now := time.Now()

			live, err := agg.ForecastFor(context.Background(), loc)
			require.NoError(t, err)
			cached, err := agg.ForecastFor(context.Background(), loc)
			require.NoError(t, err)

			want := surf.CurrentConditions(live, now)
			assert.Equal(t, "stormglass", want.Source)
			assert.Equal(t, want, surf.CurrentConditions(cached, now))
		})
	}
}

type countingProvider struct {
	calls *atomic.Int32
}

func (countingProvider) Name() string { return "counting" }

func (p countingProvider) Fetch(_ context.Context, _ geo.Coordinate, w surf.TimeWindow) (surf.ForecastSeries, error) {
	p.calls.Add(1)
	return surf.ForecastSeries{{Time: w.Start, WaveHeight: 3}}, nil
}

func TestServiceWarmSkipsFreshEntries(t *testing.T) {
	var calls atomic.Int32
	agg := surf.NewAggregator(store.NewMemoryForecastCache(time.Hour),
		[]surf.Provider{countingProvider{calls: &calls}}, surf.AggregatorConfig{})
	svc := surf.NewService(store.NewMemoryCatalog(serviceSpots), store.NewMemoryPreferences(), agg, surf.NewRanker(agg, 1, nil))

	loc, err := svc.Spot(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Warm(context.Background(), loc))
	require.NoError(t, svc.Warm(context.Background(), loc))
	assert.Equal(t, int32(1), calls.Load())
}
