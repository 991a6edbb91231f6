package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RecordsCollected     prometheus.Counter
	UnknownSchemaRecords prometheus.Counter
	DuplicatesRemoved    prometheus.Counter
	NonWildfireFiltered  prometheus.Counter
	EventsStandardized   prometheus.Counter
	PipelineRunning      prometheus.Gauge

	// Climate collection metrics.
	ClimateRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ClimateEventErrors prometheus.Counter
	WindowsAligned     prometheus.Counter

	// Feature building metrics.
	FeatureRecordsBuilt *prometheus.CounterVec // labels: form={wide,reduced,narrow}

	StageDuration *prometheus.HistogramVec // labels: stage={collect,climate,combine}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "records_collected_total",
			Help:      "Raw incident records fetched from the yearly layers.",
		}),
		UnknownSchemaRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "unknown_schema_records_total",
			Help:      "Records matching no known schema era, dropped before dedup.",
		}),
		DuplicatesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "duplicates_removed_total",
			Help:      "Records discarded as less complete members of a duplicate class.",
		}),
		NonWildfireFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "non_wildfire_filtered_total",
			Help:      "Unique records dropped for not carrying the wildfire type code.",
		}),
		EventsStandardized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "events_standardized_total",
			Help:      "Canonical events produced from raw records.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire_etl",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline stage is active, 0 otherwise.",
		}),
		ClimateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "climate_requests_total",
			Help:      "Time-machine API requests by outcome.",
		}, []string{"outcome"}),
		ClimateEventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "climate_event_errors_total",
			Help:      "Events whose climate window could not be built or fetched.",
		}),
		WindowsAligned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "windows_aligned_total",
			Help:      "Climate results aligned into point windows.",
		}),
		FeatureRecordsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire_etl",
			Name:      "feature_records_built_total",
			Help:      "Training feature records built by output form.",
		}, []string{"form"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildfire_etl",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of a complete pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800, 7200},
		}, []string{"stage"}),
	}

	prometheus.MustRegister(
		m.RecordsCollected,
		m.UnknownSchemaRecords,
		m.DuplicatesRemoved,
		m.NonWildfireFiltered,
		m.EventsStandardized,
		m.PipelineRunning,
		m.ClimateRequests,
		m.ClimateEventErrors,
		m.WindowsAligned,
		m.FeatureRecordsBuilt,
		m.StageDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsCollected:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "records_collected_total"}),
		UnknownSchemaRecords: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "unknown_schema_records_total"}),
		DuplicatesRemoved:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "duplicates_removed_total"}),
		NonWildfireFiltered:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "non_wildfire_filtered_total"}),
		EventsStandardized:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "events_standardized_total"}),
		PipelineRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wildfire_etl", Name: "pipeline_running"}),
		ClimateRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "climate_requests_total"}, []string{"outcome"}),
		ClimateEventErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "climate_event_errors_total"}),
		WindowsAligned:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "windows_aligned_total"}),
		FeatureRecordsBuilt:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire_etl", Name: "feature_records_built_total"}, []string{"form"}),
		StageDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "wildfire_etl", Name: "stage_duration_seconds"}, []string{"stage"}),
	}
}
