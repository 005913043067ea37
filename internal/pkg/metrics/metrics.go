package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ingest pipeline
type Metrics struct {
	RowsIngested    prometheus.Counter
	RowsDropped     prometheus.Counter
	RefreshFailures prometheus.Counter
	RefreshDuration prometheus.Histogram
	SnapshotEvents  prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		RowsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attendance_insight_rows_ingested_total",
			Help: "Total number of source rows normalized into punch events",
		}),
		RowsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attendance_insight_rows_dropped_total",
			Help: "Total number of malformed source rows dropped during normalization",
		}),
		RefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attendance_insight_refresh_failures_total",
			Help: "Total number of failed source refresh cycles",
		}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_insight_refresh_duration_seconds",
			Help:    "Duration of a full fetch-parse-index refresh cycle",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotEvents: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_insight_snapshot_events",
			Help: "Number of punch events in the currently served snapshot",
		}),
	}
}

// ObserveRefresh records one completed refresh cycle.
func (m *Metrics) ObserveRefresh(d time.Duration, ingested, dropped int) {
	m.RefreshDuration.Observe(d.Seconds())
	m.RowsIngested.Add(float64(ingested))
	m.RowsDropped.Add(float64(dropped))
	m.SnapshotEvents.Set(float64(ingested))
}
