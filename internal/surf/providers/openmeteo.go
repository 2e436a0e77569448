package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-spot-ranking/internal/common"
	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

// OpenMeteoName tags samples produced by OpenMeteoMarineProvider.
const OpenMeteoName = "openmeteo"

const maxOpenMeteoDays = 16

// OpenMeteoMarineProvider implements surf.Provider for the keyless Open-Meteo
// marine API. It has swell data only; wind fields are always 0.
type OpenMeteoMarineProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewOpenMeteoMarineProvider(client *http.Client, opts Options) *OpenMeteoMarineProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://marine-api.open-meteo.com/v1/marine"
	}
	return &OpenMeteoMarineProvider{
		name:    OpenMeteoName,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{Client: client, Limiter: opts.Limiter},
		circuit: newBreaker(OpenMeteoName),
		now:     time.Now,
	}
}

func (p *OpenMeteoMarineProvider) Name() string {
	return p.name
}

type openMeteoMarine struct {
	Hourly struct {
		Time       []int64    `json:"time"`
		WaveHeight []*float64 `json:"wave_height"`
		WavePeriod []*float64 `json:"wave_period"`
	} `json:"hourly"`
}

func (p *OpenMeteoMarineProvider) Fetch(ctx context.Context, at geo.Coordinate, window surf.TimeWindow) (surf.ForecastSeries, error) {
	window = windowOrDefault(window, p.now(), 72*time.Hour)

	days := int(math.Ceil(window.End.Sub(window.Start).Hours() / 24))
	days = max(1, min(days, maxOpenMeteoDays))

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(at.Lat, 'f', 6, 64))
	values.Set("longitude", strconv.FormatFloat(at.Lng, 'f', 6, 64))
	values.Set("hourly", "wave_height,wave_period")
	values.Set("timeformat", "unixtime")
	values.Set("forecast_days", strconv.Itoa(days))

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, req)
	if err != nil {
		return nil, err
	}

	var payload openMeteoMarine
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	series := make(surf.ForecastSeries, 0, len(h.Time))
	for i, unix := range h.Time {
		ts := time.Unix(unix, 0).UTC()
		if !inWindow(ts, window) {
			continue
		}
		series = append(series, surf.ConditionSample{
			Time:       ts,
			WaveHeight: common.Round2(common.MetersToFeet(valueAt(h.WaveHeight, i))),
			WavePeriod: valueAt(h.WavePeriod, i),
			Source:     p.name,
		})
	}
	return series, nil
}

// valueAt returns the i-th reading, treating gaps and nulls as 0.
func valueAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return common.FiniteOrZero(*vals[i])
}
