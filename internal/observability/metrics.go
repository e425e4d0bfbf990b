package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingest pipeline and the view derivation layer.
type Metrics struct {
	RecordsConsumed prometheus.Counter
	RecordsStored   prometheus.Counter
	InvalidRecords  prometheus.Counter
	DateFallbacks   prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// View derivation metrics.
	ViewsComputed  prometheus.Counter
	ViewCache      *prometheus.CounterVec // labels: result={hit,miss}
	DeriveDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "river_basin",
			Name:      "records_consumed_total",
			Help:      "Total raw readings read from the source topic.",
		}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "river_basin",
			Name:      "records_stored_total",
			Help:      "Total normalized observations appended to the station store.",
		}),
		InvalidRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "river_basin",
			Name:      "invalid_records_total",
			Help:      "Total readings dropped for missing station or date.",
		}),
		DateFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "river_basin",
			Name:      "date_fallbacks_total",
			Help:      "Total readings whose malformed timestamp was substituted with the current moment.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "river_basin",
			Name:      "pipeline_running",
			Help:      "1 when the ingest pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "river_basin",
			Name:      "batch_size",
			Help:      "Number of readings per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "river_basin",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-normalize-store cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ViewsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "river_basin",
			Name:      "views_computed_total",
			Help:      "Total derived views built (cache misses).",
		}),
		ViewCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "river_basin",
			Name:      "view_cache_total",
			Help:      "Derived-view cache lookups by result.",
		}, []string{"result"}),
		DeriveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "river_basin",
			Name:      "derive_duration_seconds",
			Help:      "Duration of a single view derivation.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}

	prometheus.MustRegister(
		m.RecordsConsumed,
		m.RecordsStored,
		m.InvalidRecords,
		m.DateFallbacks,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ViewsComputed,
		m.ViewCache,
		m.DeriveDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "river_basin", Name: "records_consumed_total"}),
		RecordsStored:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "river_basin", Name: "records_stored_total"}),
		InvalidRecords:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "river_basin", Name: "invalid_records_total"}),
		DateFallbacks:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "river_basin", Name: "date_fallbacks_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "river_basin", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "river_basin", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "river_basin", Name: "batch_processing_duration_seconds"}),
		ViewsComputed:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "river_basin", Name: "views_computed_total"}),
		ViewCache:               prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "river_basin", Name: "view_cache_total"}, []string{"result"}),
		DeriveDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "river_basin", Name: "derive_duration_seconds"}),
	}
}
