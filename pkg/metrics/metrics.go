package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "energy_atlas"

// Collector provides application metrics collection
type Collector struct {
	// Upstream fetches
	FetchRequestsTotal  *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	FetchRecordsTotal   *prometheus.CounterVec
	FetchSkippedRecords *prometheus.CounterVec

	// Pipeline runs
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	PipelineRows      *prometheus.HistogramVec

	// API
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// NewCollector registers every metric on reg. Passing a fresh registry keeps
// tests independent of the global default.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		FetchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_requests_total",
				Help:      "Upstream HTTP requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Upstream HTTP request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),
		FetchRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_records_total",
				Help:      "Records parsed from upstream responses",
			},
			[]string{"source"},
		),
		FetchSkippedRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_skipped_records_total",
				Help:      "Upstream records dropped for missing or unparsable values",
			},
			[]string{"source"},
		),
		PipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Pipeline runs by operation and status",
			},
			[]string{"operation", "status"},
		),
		PipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Pipeline run duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
		PipelineRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_output_rows",
				Help:      "Rows produced by a pipeline run",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000},
			},
			[]string{"operation"},
		),
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "API requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Timer measures the elapsed time of one operation.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (c *Collector) RecordFetch(source, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.FetchRequestsTotal.WithLabelValues(source, outcome).Inc()
	c.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (c *Collector) RecordRecords(source string, parsed, skipped int) {
	if c == nil {
		return
	}
	c.FetchRecordsTotal.WithLabelValues(source).Add(float64(parsed))
	c.FetchSkippedRecords.WithLabelValues(source).Add(float64(skipped))
}

func (c *Collector) RecordPipelineRun(operation, status string, d time.Duration, rows int) {
	if c == nil {
		return
	}
	c.PipelineRunsTotal.WithLabelValues(operation, status).Inc()
	c.PipelineDuration.WithLabelValues(operation).Observe(d.Seconds())
	if status == StatusSuccess {
		c.PipelineRows.WithLabelValues(operation).Observe(float64(rows))
	}
}

func (c *Collector) RecordAPIRequest(route, method, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.APIRequestsTotal.WithLabelValues(route, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)
