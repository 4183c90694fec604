package simili

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is a slog.Logger with operation helpers that keep field names
// (track_id, k, source, ...) identical across the library, server and CLI.
type Logger struct {
	*slog.Logger
}

// LogFormat selects the encoding of log records.
type LogFormat int

const (
	// LogFormatText writes logfmt-style key=value records.
	LogFormatText LogFormat = iota
	// LogFormatJSON writes one JSON object per record.
	LogFormatJSON
)

// ParseLogFormat maps "json" to LogFormatJSON and anything else to text.
func ParseLogFormat(s string) LogFormat {
	if s == "json" {
		return LogFormatJSON
	}
	return LogFormatText
}

// NewLogger wraps handler. A nil handler logs text at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewWriterLogger(os.Stderr, LogFormatText, slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewWriterLogger logs records at or above level to w.
func NewWriterLogger(w io.Writer, format LogFormat, level slog.Leveler) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == LogFormatJSON {
		return NewLogger(slog.NewJSONHandler(w, opts))
	}
	return NewLogger(slog.NewTextHandler(w, opts))
}

// NewJSONLogger logs JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewWriterLogger(os.Stderr, LogFormatJSON, level)
}

// NewTextLogger logs text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewWriterLogger(os.Stderr, LogFormatText, level)
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTrackID adds a track id field to the logger.
func (l *Logger) WithTrackID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("track_id", id),
	}
}

// WithK adds a k (result limit) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithSource adds a catalog source field to the logger.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", source),
	}
}

// LogRecommend logs a recommend operation.
func (l *Logger) LogRecommend(ctx context.Context, id string, k, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recommend failed",
			"track_id", id,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "recommend completed",
			"track_id", id,
			"k", k,
			"results", results,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, query string, limit, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", query,
			"limit", limit,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", query,
			"limit", limit,
			"results", results,
		)
	}
}

// LogCatalogLoad logs loading the track list of a catalog source.
func (l *Logger) LogCatalogLoad(ctx context.Context, source string, count int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "catalog loaded",
			"source", source,
			"count", count,
			"duration", duration,
		)
	}
}

// LogInvalidFeatures logs a track whose features fail validation.
func (l *Logger) LogInvalidFeatures(ctx context.Context, id string, err error, skipped bool) {
	l.WarnContext(ctx, "invalid track features",
		"track_id", id,
		"skipped", skipped,
		"error", err,
	)
}
