package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-spot-ranking/internal/common"
	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

// StormglassName tags samples produced by StormglassProvider.
const StormglassName = "stormglass"

var stormglassParams = []string{"waveHeight", "wavePeriod", "waveDirection", "windSpeed", "windDirection"}

// StormglassProvider implements surf.Provider for the Stormglass point forecast API.
// It reports both swell and wind, in metric units.
type StormglassProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewStormglassProvider(client *http.Client, apiKey string, opts Options) *StormglassProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.stormglass.io/v2/weather/point"
	}
	return &StormglassProvider{
		name:    StormglassName,
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Limiter: opts.Limiter},
		circuit: newBreaker(StormglassName),
		now:     time.Now,
	}
}

func (p *StormglassProvider) Name() string {
	return p.name
}

// stormglassValue maps a data source ("sg", "noaa", ...) to its reading.
type stormglassValue map[string]float64

func (v stormglassValue) sg() float64 {
	if v == nil {
		return 0
	}
	return common.FiniteOrZero(v["sg"])
}

type stormglassResponse struct {
	Hours []struct {
		Time          string          `json:"time"`
		WaveHeight    stormglassValue `json:"waveHeight"`
		WavePeriod    stormglassValue `json:"wavePeriod"`
		WindSpeed     stormglassValue `json:"windSpeed"`
		WindDirection stormglassValue `json:"windDirection"`
	} `json:"hours"`
}

func (p *StormglassProvider) Fetch(ctx context.Context, at geo.Coordinate, window surf.TimeWindow) (surf.ForecastSeries, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("stormglass api key: %w", surf.ErrNotConfigured)
	}
	window = windowOrDefault(window, p.now(), 72*time.Hour)

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(at.Lat, 'f', 6, 64))
	values.Set("lng", strconv.FormatFloat(at.Lng, 'f', 6, 64))
	values.Set("params", strings.Join(stormglassParams, ","))
	values.Set("start", strconv.FormatInt(window.Start.Unix(), 10))
	values.Set("end", strconv.FormatInt(window.End.Unix(), 10))

	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	if err != nil {
		return nil, err
	}

	var payload stormglassResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	series := make(surf.ForecastSeries, 0, len(payload.Hours))
	for _, h := range payload.Hours {
		ts, err := time.Parse(time.RFC3339, h.Time)
		if err != nil {
			continue
		}
		series = append(series, surf.ConditionSample{
			Time:          ts.UTC(),
			WaveHeight:    common.Round2(common.MetersToFeet(h.WaveHeight.sg())),
			WavePeriod:    h.WavePeriod.sg(),
			WindSpeed:     common.Round2(common.MetersPerSecondToMph(h.WindSpeed.sg())),
			WindDirection: h.WindDirection.sg(),
			Source:        p.name,
		})
	}
	return series, nil
}
