package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-spot-ranking/internal/common"
	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

// OpenWeatherName tags samples produced by OpenWeatherProvider.
const OpenWeatherName = "openweathermap"

// OpenWeatherProvider implements surf.Provider for the OpenWeatherMap 5 day / 3 hour
// forecast. The free tier has no marine data, so wave fields are always 0.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts Options) *OpenWeatherProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5/forecast"
	}
	return &OpenWeatherProvider{
		name:    OpenWeatherName,
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Limiter: opts.Limiter},
		circuit: newBreaker(OpenWeatherName),
		now:     time.Now,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
	} `json:"list"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, at geo.Coordinate, window surf.TimeWindow) (surf.ForecastSeries, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweathermap api key: %w", surf.ErrNotConfigured)
	}
	window = windowOrDefault(window, p.now(), 72*time.Hour)

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(at.Lat, 'f', 6, 64))
	values.Set("lon", strconv.FormatFloat(at.Lng, 'f', 6, 64))
	values.Set("appid", p.apiKey)
	// Imperial units report wind in mph.
	values.Set("units", "imperial")

	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	if err != nil {
		return nil, err
	}

	var payload openWeatherForecast
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	series := make(surf.ForecastSeries, 0, len(payload.List))
	for _, item := range payload.List {
		ts := time.Unix(item.Dt, 0).UTC()
		if !inWindow(ts, window) {
			continue
		}
		series = append(series, surf.ConditionSample{
			Time:          ts,
			WindSpeed:     common.FiniteOrZero(item.Wind.Speed),
			WindDirection: common.FiniteOrZero(item.Wind.Deg),
			Source:        p.name,
		})
	}
	return series, nil
}
