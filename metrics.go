package ncd

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting build metrics.
// Implement this interface to integrate with monitoring systems; see
// package metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordPending is called at the start of a run and after every row with
	// the number of identifiers left to process.
	RecordPending(pending int)

	// RecordRow is called after each row attempt.
	// columns is the row width, err is nil if successful.
	RecordRow(columns int, duration time.Duration, err error)

	// RecordSave is called after each matrix save.
	// rows is the number of rows written, err is nil if successful.
	RecordSave(rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPending(int)                   {}
func (NoopMetricsCollector) RecordRow(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordSave(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Pending        atomic.Int64
	RowCount       atomic.Int64
	RowErrors      atomic.Int64
	RowColumns     atomic.Int64
	RowTotalNanos  atomic.Int64
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveTotalNanos atomic.Int64
	LastSaveRows   atomic.Int64
}

// RecordPending implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPending(pending int) {
	b.Pending.Store(int64(pending))
}

// RecordRow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRow(columns int, duration time.Duration, err error) {
	b.RowCount.Add(1)
	b.RowTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RowErrors.Add(1)
		return
	}
	b.RowColumns.Add(int64(columns))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(rows int, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.LastSaveRows.Store(int64(rows))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Pending:      b.Pending.Load(),
		RowCount:     b.RowCount.Load(),
		RowErrors:    b.RowErrors.Load(),
		RowColumns:   b.RowColumns.Load(),
		RowAvgNanos:  avg(b.RowTotalNanos.Load(), b.RowCount.Load()),
		SaveCount:    b.SaveCount.Load(),
		SaveErrors:   b.SaveErrors.Load(),
		SaveAvgNanos: avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		LastSaveRows: b.LastSaveRows.Load(),
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
	Pending      int64
	RowCount     int64
	RowErrors    int64
	RowColumns   int64
	RowAvgNanos  int64
	SaveCount    int64
	SaveErrors   int64
	SaveAvgNanos int64
	LastSaveRows int64
}
