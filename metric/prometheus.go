// Package metric exports recommender and HTTP metrics to Prometheus.
package metric

import (
	"errors"
	"strconv"
	"time"

	"github.com/hupe1980/simili"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "simili"

// Collector implements simili.MetricsCollector on top of Prometheus metrics.
type Collector struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	results      *prometheus.HistogramVec
	catalogSize  prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ simili.MetricsCollector = (*Collector)(nil)

// New registers the collector's metrics on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of recommender operations by outcome",
			},
			[]string{"operation", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of recommender operations in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		results: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_results",
				Help:      "Number of results returned per operation",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"operation"},
		),
		catalogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_tracks",
				Help:      "Number of tracks seen by the last catalog load",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

func (c *Collector) record(op string, results int, d time.Duration, err error) {
	c.duration.WithLabelValues(op).Observe(d.Seconds())
	c.operations.WithLabelValues(op, status(err)).Inc()
	if err == nil {
		c.results.WithLabelValues(op).Observe(float64(results))
	}
}

// RecordRecommend implements simili.MetricsCollector.
func (c *Collector) RecordRecommend(results int, d time.Duration, err error) {
	c.record("recommend", results, d, err)
}

// RecordSearch implements simili.MetricsCollector.
func (c *Collector) RecordSearch(results int, d time.Duration, err error) {
	c.record("search", results, d, err)
}

// RecordCatalogLoad implements simili.MetricsCollector.
func (c *Collector) RecordCatalogLoad(count int, d time.Duration, err error) {
	c.duration.WithLabelValues("catalog_load").Observe(d.Seconds())
	c.operations.WithLabelValues("catalog_load", status(err)).Inc()
	if err == nil {
		c.catalogSize.Set(float64(count))
	}
}

// ObserveHTTP records one served HTTP request.
func (c *Collector) ObserveHTTP(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// status classifies err into a low-cardinality label.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, simili.ErrNotFound):
		return "not_found"
	case errors.Is(err, simili.ErrInvalidK), errors.Is(err, simili.ErrEmptyQuery):
		return "invalid"
	default:
		return "error"
	}
}
