// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records per-run Prometheus metrics for pubmed-filter.
// A run is a short-lived batch job, so metrics live in a private registry
// and are written once at exit in the text exposition format (suitable for
// the node_exporter textfile collector).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pubmed_filter"

// Metrics holds the collectors for one run. All methods are safe to call on
// a nil *Metrics, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Requests counts E-utilities requests, labeled by operation and final status code.
	Requests *prometheus.CounterVec

	// RequestDuration observes request duration in seconds including retries.
	RequestDuration *prometheus.HistogramVec

	// Retries counts backoff retries, labeled by operation.
	Retries *prometheus.CounterVec

	// ArticlesParsed counts articles parsed from efetch payloads.
	ArticlesParsed prometheus.Counter

	// ArticlesRejected counts records skipped for a missing PMID.
	ArticlesRejected prometheus.Counter

	// ArticlesReported counts articles that produced a report row.
	ArticlesReported prometheus.Counter

	// LastRunSuccess is 1 when the last run finished without error.
	LastRunSuccess prometheus.Gauge

	// LastRunTimestamp is the Unix time the last run finished.
	LastRunTimestamp prometheus.Gauge
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "E-utilities requests by operation and final HTTP status code.",
		}, []string{"op", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "E-utilities request duration including retries.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
		Retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Backoff retries by operation.",
		}, []string{"op"}),
		ArticlesParsed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_parsed_total",
			Help:      "Articles parsed from efetch payloads.",
		}),
		ArticlesRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_rejected_total",
			Help:      "Article records rejected for a missing PMID.",
		}),
		ArticlesReported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_reported_total",
			Help:      "Articles with at least one non-academic author.",
		}),
		LastRunSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run finished without error, 0 otherwise.",
		}),
		LastRunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one request. status is zero when no response arrived.
func (m *Metrics) ObserveRequest(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(op, code).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// IncRetry records one backoff retry.
func (m *Metrics) IncRetry(op string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(op).Inc()
}

// ObserveParse records the outcome of parsing one payload.
func (m *Metrics) ObserveParse(parsed, rejected int) {
	if m == nil {
		return
	}
	m.ArticlesParsed.Add(float64(parsed))
	m.ArticlesRejected.Add(float64(rejected))
}

// ObserveReported records the number of report rows produced.
func (m *Metrics) ObserveReported(rows int) {
	if m == nil {
		return
	}
	m.ArticlesReported.Add(float64(rows))
}

// MarkRun records the end of a run.
func (m *Metrics) MarkRun(success bool, at time.Time) {
	if m == nil {
		return
	}
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
	m.LastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
