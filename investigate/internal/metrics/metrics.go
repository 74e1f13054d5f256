package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query translation metrics
	QueriesTranslated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casetrace_queries_translated_total",
			Help: "Total number of natural language queries translated",
		},
	)

	// Event store metrics
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casetrace_event_fetch_duration_seconds",
			Help:    "Duration of event store fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casetrace_event_fetch_errors_total",
			Help: "Total number of event store fetch errors",
		},
	)

	EventsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casetrace_events_fetched_total",
			Help: "Total number of events returned by the event store",
		},
	)

	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casetrace_events_ingested_total",
			Help: "Total number of events submitted for indexing",
		},
		[]string{"status"},
	)

	// Correlation metrics
	TimelinesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casetrace_timelines_generated_total",
			Help: "Total number of correlated timelines generated",
		},
	)

	PatternsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casetrace_patterns_detected_total",
			Help: "Total number of suspicious patterns detected",
		},
	)

	// Report metrics
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casetrace_reports_generated_total",
			Help: "Total number of forensic reports generated",
		},
		[]string{"format"},
	)

	ReportCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casetrace_report_cache_hits_total",
			Help: "Total number of report cache hits",
		},
	)

	ReportCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casetrace_report_cache_misses_total",
			Help: "Total number of report cache misses",
		},
	)
)
