// Package metrics provides Prometheus metrics for the fern matching engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AliasRowsTotal tracks alias source rows by outcome (loaded, skipped)
	AliasRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "aliases",
			Name:      "rows_total",
			Help:      "Total number of alias source rows by outcome",
		},
		[]string{"outcome"},
	)

	// AliasNamesFiltered tracks subsidiary and brand names rejected by the validity filter
	AliasNamesFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "aliases",
			Name:      "names_filtered_total",
			Help:      "Total number of subsidiary and brand names rejected as aliases",
		},
		[]string{"kind"},
	)

	// IndexBuildDuration tracks blocking index build time in seconds
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "blocking",
			Name:      "index_build_duration_seconds",
			Help:      "Duration of blocking index builds in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// IndexedItems tracks the number of catalog items in the most recent index
	IndexedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fern",
			Subsystem: "blocking",
			Name:      "indexed_items",
			Help:      "Number of catalog items in the most recently built blocking index",
		},
	)

	// CandidatesGenerated tracks candidate pairs emitted by the blocking index
	CandidatesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "blocking",
			Name:      "candidates_total",
			Help:      "Total number of candidate pairs generated",
		},
	)

	// CandidateRunDuration tracks full candidate-generation runs in seconds
	CandidateRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "matching",
			Name:      "candidate_run_duration_seconds",
			Help:      "Duration of candidate generation runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// PairsScored tracks pair feature vectors computed
	PairsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "features",
			Name:      "pairs_scored_total",
			Help:      "Total number of product pairs scored",
		},
	)

	// ComparisonsTotal tracks comparison lookups by result (ok, not_found, error, cached)
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "compare",
			Name:      "requests_total",
			Help:      "Total number of comparison lookups by result",
		},
		[]string{"result"},
	)

	// EventsPublished tracks scored-pair events written to the broker
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of events published by type and status",
		},
		[]string{"event_type", "status"},
	)
)
