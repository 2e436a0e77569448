package surf

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/surf-spot-ranking/internal/metrics"
)

// forecastPreviewLen is how many samples a ranked result carries.
const forecastPreviewLen = 24

// Forecaster is what the ranker needs from the aggregator.
type Forecaster interface {
	ForecastFor(ctx context.Context, loc Location) (ForecastSeries, error)
}

// Ranker scores a candidate set against a preference profile.
type Ranker struct {
	forecasts Forecaster
	workers   int
	now       func() time.Time
}

// NewRanker creates a Ranker that processes at most workers candidates at once.
func NewRanker(forecasts Forecaster, workers int, now func() time.Time) *Ranker {
	if workers <= 0 {
		workers = 4
	}
	if now == nil {
		now = time.Now
	}
	return &Ranker{forecasts: forecasts, workers: workers, now: now}
}

// Rank returns one ScoredCandidate per input candidate, ordered by descending
// score. Equal scores keep input order. A candidate that fails is kept with
// zero scores.
func (r *Ranker) Rank(ctx context.Context, profile PreferenceProfile, candidates []Candidate) []ScoredCandidate {
	start := time.Now()
	defer func() { metrics.RankDuration.Observe(time.Since(start).Seconds()) }()

	at := r.now()
	results := make([]ScoredCandidate, len(candidates))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, c := range candidates {
		g.Go(func() error {
			scored, err := r.scoreOne(ctx, profile, c, at)
			if err != nil {
				log.Error().Err(err).Int64("location", c.Location.ID).Str("spot", c.Location.Name).Msg("ranking spot failed")
				metrics.RankedCandidates.WithLabelValues("failed").Inc()
				scored = zeroScored(c)
			} else {
				metrics.RankedCandidates.WithLabelValues("scored").Inc()
			}
			results[i] = scored
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (r *Ranker) scoreOne(ctx context.Context, profile PreferenceProfile, c Candidate, at time.Time) (sc ScoredCandidate, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while scoring: %v", p)
		}
	}()

	series, err := r.forecasts.ForecastFor(ctx, c.Location)
	if err != nil {
		return ScoredCandidate{}, err
	}

	cond := CurrentConditions(series, at)
	scores, total := ScoreCandidate(profile, c, cond)

	return ScoredCandidate{
		Location:   c.Location,
		DistanceKm: c.DistanceKm,
		Conditions: cond,
		Scores:     scores,
		Score:      total,
		Forecast:   append(ForecastSeries{}, series.Head(forecastPreviewLen)...),
	}, nil
}

func zeroScored(c Candidate) ScoredCandidate {
	return ScoredCandidate{
		Location:   c.Location,
		DistanceKm: c.DistanceKm,
		Forecast:   ForecastSeries{},
	}
}
