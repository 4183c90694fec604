package simili

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Package metric provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordRecommend is called after each recommend operation.
	// results is the number of recommendations returned.
	RecordRecommend(results int, duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	RecordSearch(results int, duration time.Duration, err error)

	// RecordCatalogLoad is called after the track list of a source was read.
	// count is the number of tracks loaded.
	RecordCatalogLoad(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRecommend(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordCatalogLoad(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RecommendCount      atomic.Int64
	RecommendErrors     atomic.Int64
	RecommendResults    atomic.Int64
	RecommendTotalNanos atomic.Int64
	SearchCount         atomic.Int64
	SearchErrors        atomic.Int64
	SearchTotalNanos    atomic.Int64
	CatalogLoadCount    atomic.Int64
	CatalogLoadErrors   atomic.Int64
	CatalogLoadTracks   atomic.Int64
}

// RecordRecommend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecommend(results int, duration time.Duration, err error) {
	b.RecommendCount.Add(1)
	b.RecommendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RecommendErrors.Add(1)
		return
	}
	b.RecommendResults.Add(int64(results))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordCatalogLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCatalogLoad(count int, duration time.Duration, err error) {
	b.CatalogLoadCount.Add(1)
	if err != nil {
		b.CatalogLoadErrors.Add(1)
		return
	}
	b.CatalogLoadTracks.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RecommendCount:    b.RecommendCount.Load(),
		RecommendErrors:   b.RecommendErrors.Load(),
		RecommendResults:  b.RecommendResults.Load(),
		RecommendAvgNanos: avg(b.RecommendTotalNanos.Load(), b.RecommendCount.Load()),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		CatalogLoadCount:  b.CatalogLoadCount.Load(),
		CatalogLoadErrors: b.CatalogLoadErrors.Load(),
		CatalogLoadTracks: b.CatalogLoadTracks.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RecommendCount    int64
	RecommendErrors   int64
	RecommendResults  int64
	RecommendAvgNanos int64
	SearchCount       int64
	SearchErrors      int64
	SearchAvgNanos    int64
	CatalogLoadCount  int64
	CatalogLoadErrors int64
	CatalogLoadTracks int64
}
