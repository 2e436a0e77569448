package surf

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/surf-spot-ranking/internal/metrics"
)

// AggregatorConfig tunes the forecast read-through path.
type AggregatorConfig struct {
	// ProviderTimeout bounds every individual provider call.
	ProviderTimeout time.Duration
	// Horizon is how far ahead providers are asked to forecast.
	Horizon time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Aggregator obtains the forecast for a location, reading through the cache and
// fanning out to every provider on a miss.
type Aggregator struct {
	cache     ForecastCache
	providers []Provider
	cfg       AggregatorConfig

	// providers that failed with ErrNotConfigured; they are skipped afterwards.
	disabled sync.Map
}

// NewAggregator creates a new Aggregator.
func NewAggregator(cache ForecastCache, providers []Provider, cfg AggregatorConfig) *Aggregator {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 8 * time.Second
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 72 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Aggregator{
		cache:     cache,
		providers: providers,
		cfg:       cfg,
	}
}

// ForecastFor returns the forecast series for loc. Provider failures never
// surface as errors: if every provider fails the result is an empty, non-nil
// series. Only invalid input is rejected.
func (a *Aggregator) ForecastFor(ctx context.Context, loc Location) (ForecastSeries, error) {
	if loc.ID <= 0 {
		return nil, fmt.Errorf("%w: location id must be positive", ErrInvalidInput)
	}
	if !loc.Coordinate().Valid() {
		return nil, fmt.Errorf("%w: location %d has an invalid coordinate", ErrInvalidInput, loc.ID)
	}

	cached, ok, err := a.cache.Get(ctx, loc.ID)
	switch {
	case err != nil:
		log.Warn().Err(err).Int64("location", loc.ID).Msg("forecast cache read failed; fetching live")
		metrics.CacheLookups.WithLabelValues("error").Inc()
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	series := a.fetchAll(ctx, loc)
	if len(series) == 0 {
		log.Info().Int64("location", loc.ID).Msg("no provider returned samples; conditions unknown")
		return series, nil
	}

	if err := a.cache.Put(ctx, loc.ID, series); err != nil {
		log.Warn().Err(err).Int64("location", loc.ID).Msg("forecast cache write failed")
	}
	return series, nil
}

// fetchAll queries every enabled provider concurrently and returns the union of
// their samples ordered by time. Samples sharing a timestamp keep provider
// configuration order, whatever order the calls finish in.
func (a *Aggregator) fetchAll(ctx context.Context, loc Location) ForecastSeries {
	var wg sync.WaitGroup
	slots := make([]ForecastSeries, len(a.providers))

	now := a.cfg.Now()
	window := TimeWindow{Start: now, End: now.Add(a.cfg.Horizon)}

	for i, p := range a.providers {
		if _, off := a.disabled.Load(p.Name()); off {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			samples, err := a.fetchOne(ctx, p, loc, window)
			if err != nil {
				a.recordFailure(p, loc, err)
				return
			}
			metrics.ProviderFetches.WithLabelValues(p.Name(), "ok").Inc()
			slots[i] = samples
		}()
	}

	wg.Wait()

	series := ForecastSeries{}
	for _, samples := range slots {
		series = append(series, samples...)
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})
	return series
}

func (a *Aggregator) fetchOne(ctx context.Context, p Provider, loc Location, window TimeWindow) (samples ForecastSeries, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout)
	defer cancel()

	// A misbehaving adapter must not take the whole aggregation down.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", p.Name(), r)
		}
	}()

	samples, err = p.Fetch(ctx, loc.Coordinate(), window)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		if samples[i].Source == "" {
			samples[i].Source = p.Name()
		}
	}
	return samples, nil
}

func (a *Aggregator) recordFailure(p Provider, loc Location, err error) {
	if errors.Is(err, ErrNotConfigured) {
		metrics.ProviderFetches.WithLabelValues(p.Name(), "not_configured").Inc()
		if _, seen := a.disabled.LoadOrStore(p.Name(), struct{}{}); !seen {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("provider disabled: missing configuration")
		}
		return
	}

	outcome := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		outcome = "timeout"
	}
	metrics.ProviderFetches.WithLabelValues(p.Name(), outcome).Inc()
	log.Warn().Err(err).Str("provider", p.Name()).Int64("location", loc.ID).Msg("provider fetch failed")
}
