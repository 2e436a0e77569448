package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

// Warmer is the part of the surf service the scheduler drives.
type Warmer interface {
	Spots(ctx context.Context) ([]surf.Location, error)
	Warm(ctx context.Context, loc surf.Location) error
}

// Scheduler periodically makes sure every catalog spot has a live cached
// forecast. Spots whose entry is still fresh are served from the cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Warmer
	interval  time.Duration
	workers   int
	timeout   time.Duration
}

// New creates a new Scheduler. An interval of zero disables it.
func New(service Warmer, interval time.Duration, workers int) *Scheduler {
	if workers <= 0 {
		workers = 4
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		workers:   workers,
		timeout:   time.Minute,
	}
}

// Start schedules the warm job and starts the underlying scheduler. The first
// run happens immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Info().Msg("scheduler: cache warming disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce fills missing or expired cache entries and reports how many spots
// ended up with a forecast available.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	spots, err := s.service.Spots(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: listing spots failed")
		return 0
	}
	log.Info().Int("spots", len(spots)).Msg("scheduler: filling forecast cache")

	results := make([]bool, len(spots))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, loc := range spots {
		g.Go(func() error {
			wctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if err := s.service.Warm(wctx, loc); err != nil {
				log.Warn().Err(err).Int64("location", loc.ID).Str("spot", loc.Name).Msg("scheduler: warm failed")
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	ready := 0
	for _, ok := range results {
		if ok {
			ready++
		}
	}
	log.Info().Int("ready", ready).Int("spots", len(spots)).Msg("scheduler: completed warm job")
	return ready
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
