package simili

import (
	"log/slog"

	"github.com/hupe1980/simili/rank"
)

type options struct {
	ranker           rank.Interface
	metricsCollector MetricsCollector
	logger           *Logger
	defaultLimit     int
	strictFeatures   bool
}

// Option configures a Recommender.
type Option func(*options)

// WithRanker replaces the brute-force cosine ranker, e.g. with an approximate
// nearest-neighbor index. Results must set rank.Result.Index to the
// candidate's position in the pool.
//
// If nil is passed, the default rank.Ranker is used.
func WithRanker(r rank.Interface) Option {
	return func(o *options) {
		o.ranker = r
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &simili.BasicMetricsCollector{}
//	r, _ := simili.New(source, simili.WithMetricsCollector(metrics))
//	// ... use r ...
//	stats := metrics.GetStats()
//	fmt.Printf("Recommends: %d, Avg latency: %dns\n", stats.RecommendCount, stats.RecommendAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := simili.NewJSONLogger(slog.LevelInfo)
//	r, _ := simili.New(source, simili.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithDefaultLimit sets the number of results returned when a caller passes
// k == 0. The default of 0 returns every result.
func WithDefaultLimit(n int) Option {
	return func(o *options) {
		o.defaultLimit = max(n, 0)
	}
}

// WithStrictFeatures controls how tracks with out-of-range features are
// handled. When strict, such tracks are skipped from candidate pools and a
// seed with invalid features fails the request. Otherwise they are logged and
// used as is.
func WithStrictFeatures(strict bool) Option {
	return func(o *options) {
		o.strictFeatures = strict
	}
}

func applyOptions(optFns []Option) options {
	o := options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.ranker == nil {
		o.ranker = rank.Ranker{}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
