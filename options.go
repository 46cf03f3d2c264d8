package ncd

import (
	"time"

	"github.com/hupe1980/ncd/compressor"
	"github.com/hupe1980/ncd/resource"
)

type options struct {
	compressor       compressor.Compressor
	workers          int
	saveEvery        int
	saveInterval     time.Duration
	logger           *Logger
	metricsCollector MetricsCollector
	resource         *resource.Controller
	runID            string
}

func defaultOptions() options {
	return options{
		workers:          1,
		saveEvery:        1,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures a Builder.
type Option func(*options)

// WithCompressor sets the compressor used for every length measurement.
//
// If nil is passed, the default configuration (delta + raw LZMA2) is used.
func WithCompressor(c compressor.Compressor) Option {
	return func(o *options) {
		o.compressor = c
	}
}

// WithWorkers sets the number of rows computed concurrently.
// Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSaveEvery saves the matrix after every k completed rows.
// Values below 1 mean 1 (save after every row).
func WithSaveEvery(k int) Option {
	return func(o *options) {
		o.saveEvery = k
	}
}

// WithSaveInterval additionally saves when d has elapsed since the last save
// and unsaved rows exist. 0 disables time-based saves.
func WithSaveInterval(d time.Duration) Option {
	return func(o *options) {
		o.saveInterval = d
	}
}

// WithLogger sets the logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
//
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController bounds memory held by workers and concurrent corpus
// reads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithRunID sets the run identifier used in logs and the report.
// By default every Run gets a random UUID.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}
