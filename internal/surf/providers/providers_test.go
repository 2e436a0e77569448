package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

var (
	testNow   = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	testPoint = geo.Coordinate{Lat: 33.6553, Lng: -118.0036}
)

func fixedNow() time.Time { return testNow }

func TestStormglassFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "33.655300", r.URL.Query().Get("lat"))
		assert.Equal(t, "-118.003600", r.URL.Query().Get("lng"))
		assert.Contains(t, r.URL.Query().Get("params"), "waveHeight")
		assert.Equal(t, "1791979200", r.URL.Query().Get("start"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hours":[
			{"time":"2026-10-14T12:00:00+00:00","waveHeight":{"sg":1.0,"noaa":1.2},"wavePeriod":{"sg":11},"windSpeed":{"sg":4.0},"windDirection":{"sg":95}},
			{"time":"2026-10-14T13:00:00+00:00","waveHeight":{"noaa":1.2},"windDirection":{"sg":100}},
			{"time":"not-a-time","waveHeight":{"sg":9}}
		]}`))
	}))
	defer server.Close()

	p := NewStormglassProvider(server.Client(), "secret", Options{BaseURL: server.URL})
	p.now = fixedNow

	series, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
	require.NoError(t, err)
	require.Len(t, series, 2)

	first := series[0]
	assert.Equal(t, testNow, first.Time)
	assert.InDelta(t, 3.28, first.WaveHeight, 0.01)
	assert.Equal(t, 11.0, first.WavePeriod)
	assert.InDelta(t, 8.95, first.WindSpeed, 0.01)
	assert.Equal(t, 95.0, first.WindDirection)
	assert.Equal(t, StormglassName, first.Source)

	// Missing sg readings fall back to the zero sentinel.
	assert.Zero(t, series[1].WaveHeight)
	assert.Zero(t, series[1].WindSpeed)
	assert.Equal(t, 100.0, series[1].WindDirection)
}

func TestStormglassMissingKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	p := NewStormglassProvider(server.Client(), "", Options{BaseURL: server.URL})
	_, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, surf.ErrNotConfigured))
	assert.Zero(t, calls.Load())
}

func TestOpenWeatherFetch(t *testing.T) {
	body := fmt.Sprintf(`{"list":[
		{"dt":%d,"wind":{"speed":5,"deg":270}},
		{"dt":%d,"wind":{"speed":7,"deg":270}},
		{"dt":%d,"wind":{"speed":9,"deg":270}},
		{"dt":%d,"wind":{"speed":3,"deg":270}}
	]}`,
		testNow.Unix(),
		testNow.Add(3*time.Hour).Unix(),
		testNow.Add(6*time.Hour).Unix(),
		testNow.Add(100*time.Hour).Unix(), // outside the requested window
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	p := NewOpenWeatherProvider(server.Client(), "key", Options{BaseURL: server.URL})
	p.now = fixedNow

	series, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
	require.NoError(t, err)
	require.Len(t, series, 3)
	for _, s := range series {
		assert.Zero(t, s.WaveHeight)
		assert.Zero(t, s.WavePeriod)
		assert.Equal(t, 270.0, s.WindDirection)
		assert.Equal(t, OpenWeatherName, s.Source)
	}
	assert.Equal(t, 9.0, series[2].WindSpeed)
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "", Options{})
	_, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
	assert.ErrorIs(t, err, surf.ErrNotConfigured)
}

func TestOpenMeteoFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wave_height,wave_period", r.URL.Query().Get("hourly"))
		assert.Equal(t, "3", r.URL.Query().Get("forecast_days"))
		_, _ = w.Write([]byte(`{"hourly":{
			"time":[1791979200,1791982800,1791986400],
			"wave_height":[1.5,null],
			"wave_period":[12.5,13,14]
		}}`))
	}))
	defer server.Close()

	p := NewOpenMeteoMarineProvider(server.Client(), Options{BaseURL: server.URL})
	p.now = fixedNow

	series, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, testNow, series[0].Time)
	assert.InDelta(t, 4.92, series[0].WaveHeight, 0.01)
	assert.Equal(t, 12.5, series[0].WavePeriod)
	assert.Zero(t, series[0].WindSpeed)
	assert.Zero(t, series[1].WaveHeight, "null reading")
	assert.Zero(t, series[2].WaveHeight, "short array")
	assert.Equal(t, 14.0, series[2].WavePeriod)
}

func TestFetchStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, errRateLimited},
		{http.StatusBadGateway, errServerError},
		{http.StatusUnauthorized, errUnexpected},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		p := NewOpenMeteoMarineProvider(server.Client(), Options{BaseURL: server.URL})
		_, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)

		server.Close()
	}
}

func TestFetchDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewOpenMeteoMarineProvider(server.Client(), Options{BaseURL: server.URL})
	_, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchHonorsContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	p := NewOpenMeteoMarineProvider(server.Client(), Options{BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Fetch(ctx, testPoint, surf.TimeWindow{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCircuitOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOpenMeteoMarineProvider(server.Client(), Options{BaseURL: server.URL})

	// gobreaker's default ReadyToTrip opens after more than 5 consecutive failures.
	for i := 0; i < 6; i++ {
		_, _ = p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
	}
	_, err := p.Fetch(context.Background(), testPoint, surf.TimeWindow{})
	assert.ErrorIs(t, err, surf.ErrProviderUnavailable)
}
