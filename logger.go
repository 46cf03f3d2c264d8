package ncd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with ncd-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithID adds an id field to the logger.
func (l *Logger) WithID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id),
	}
}

// LogRunStart logs the beginning of a build.
func (l *Logger) LogRunStart(ctx context.Context, total, stored int, compressor string) {
	l.InfoContext(ctx, "build started",
		"corpus", total,
		"stored_rows", stored,
		"compressor", compressor,
	)
}

// LogPending logs the number of identifiers still to process.
func (l *Logger) LogPending(ctx context.Context, pending int) {
	l.InfoContext(ctx, fmt.Sprintf("%d identifiers left to process", pending),
		"pending", pending,
	)
}

// LogRow logs a row computation.
func (l *Logger) LogRow(ctx context.Context, id string, columns int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "row failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "row completed",
			"id", id,
			"columns", columns,
			"duration", duration,
		)
	}
}

// LogSave logs a matrix save.
func (l *Logger) LogSave(ctx context.Context, name string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "matrix saved",
			"name", name,
			"rows", rows,
		)
	}
}

// LogRunDone logs the outcome of a build.
func (l *Logger) LogRunDone(ctx context.Context, r *Report, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build aborted",
			"completed", r.Completed,
			"failed", r.Failed,
			"saves", r.Saves,
			"error", err,
		)
		return
	}
	if r.Failed > 0 {
		l.WarnContext(ctx, "build completed with failures",
			"completed", r.Completed,
			"failed", r.Failed,
			"saves", r.Saves,
			"duration", r.Duration,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"completed", r.Completed,
			"saves", r.Saves,
			"duration", r.Duration,
		)
	}
}
