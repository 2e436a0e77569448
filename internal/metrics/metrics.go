// Package metrics declares the Prometheus collectors for the forecast and
// ranking paths. They register on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts forecast cache reads by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surf",
		Name:      "forecast_cache_lookups_total",
		Help:      "Forecast cache lookups by result.",
	}, []string{"result"})

	// ProviderFetches counts provider calls by provider and outcome.
	ProviderFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surf",
		Name:      "provider_fetches_total",
		Help:      "Forecast provider calls by outcome.",
	}, []string{"provider", "outcome"})

	// RankedCandidates counts ranked spots by outcome (scored, failed).
	RankedCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "surf",
		Name:      "ranked_candidates_total",
		Help:      "Candidates processed by the ranker.",
	}, []string{"outcome"})

	RankDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "surf",
		Name:      "rank_duration_seconds",
		Help:      "Time to rank a candidate set.",
		Buckets:   prometheus.DefBuckets,
	})
)
