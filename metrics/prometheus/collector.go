// Package prometheus exports build metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, err := ncdprom.NewCollector(reg)
//	b, _ := ncd.New(src, store, ncd.WithMetricsCollector(mc))
//	http.Handle("/metrics", ncdprom.Handler(reg))
package prometheus

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/ncd"
)

const namespace = "ncd"

// Collector implements ncd.MetricsCollector with Prometheus instruments.
type Collector struct {
	pending      prom.Gauge
	rows         *prom.CounterVec
	rowDuration  prom.Histogram
	columns      prom.Counter
	saves        *prom.CounterVec
	saveDuration prom.Histogram
	matrixRows   prom.Gauge
}

var _ ncd.MetricsCollector = (*Collector)(nil)

// NewCollector creates the instruments and registers them with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prom.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	c := &Collector{
		pending: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_identifiers",
			Help:      "Identifiers left to process in the current run.",
		}),
		rows: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Row computations by outcome.",
		}, []string{"status"}),
		rowDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "row_duration_seconds",
			Help:      "Time to compute one complete row.",
			Buckets:   prom.ExponentialBuckets(0.01, 4, 10),
		}),
		columns: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "distances_total",
			Help:      "Distances computed in completed rows.",
		}),
		saves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Matrix saves by outcome.",
		}, []string{"status"}),
		saveDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Time to encode and atomically replace the matrix.",
			Buckets:   prom.DefBuckets,
		}),
		matrixRows: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_rows",
			Help:      "Rows in the last saved matrix.",
		}),
	}

	for _, col := range []prom.Collector{
		c.pending, c.rows, c.rowDuration, c.columns, c.saves, c.saveDuration, c.matrixRows,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordPending implements ncd.MetricsCollector.
func (c *Collector) RecordPending(pending int) {
	c.pending.Set(float64(pending))
}

// RecordRow implements ncd.MetricsCollector.
func (c *Collector) RecordRow(columns int, duration time.Duration, err error) {
	c.rows.WithLabelValues(status(err)).Inc()
	c.rowDuration.Observe(duration.Seconds())
	if err == nil {
		c.columns.Add(float64(columns))
	}
}

// RecordSave implements ncd.MetricsCollector.
func (c *Collector) RecordSave(rows int, duration time.Duration, err error) {
	c.saves.WithLabelValues(status(err)).Inc()
	c.saveDuration.Observe(duration.Seconds())
	if err == nil {
		c.matrixRows.Set(float64(rows))
	}
}

// Handler serves the metrics gathered by g.
// If g is nil, prometheus.DefaultGatherer is used.
func Handler(g prom.Gatherer) http.Handler {
	if g == nil {
		g = prom.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
