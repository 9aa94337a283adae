// Package metrics records crawl and publish counters with Prometheus.
//
// adpush runs as a batch job, so metrics are not scraped from a live
// endpoint. They are written to a node-exporter textfile at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
)

// Ensure Collector implements the interface.
var _ driven.MetricsRecorder = (*Collector)(nil)

// Collector is the Prometheus implementation of driven.MetricsRecorder.
type Collector struct {
	gatherer prometheus.Gatherer

	issues       *prometheus.CounterVec
	users        prometheus.Gauge
	documents    prometheus.Gauge
	stepDuration *prometheus.HistogramVec
	stepFailures *prometheus.CounterVec
	runs         *prometheus.CounterVec
	lastSuccess  prometheus.Gauge
	orderingID   prometheus.Gauge
}

// NewCollector creates a Collector registered on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	return NewCollectorWithRegistry(reg, reg)
}

// NewCollectorWithRegistry registers the metrics on reg. gatherer is used
// by WriteTextfile and is normally the same registry.
func NewCollectorWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	c := &Collector{
		gatherer: gatherer,
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adpush_issues_total",
			Help: "Non-fatal problems reported during a run, by kind.",
		}, []string{"kind"}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adpush_users",
			Help: "Users produced by the last crawl.",
		}),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adpush_documents",
			Help: "Documents in the last published batch.",
		}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adpush_publish_step_duration_seconds",
			Help:    "Duration of each upload protocol step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adpush_publish_step_failures_total",
			Help: "Upload protocol steps that failed.",
		}, []string{"step"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adpush_publish_runs_total",
			Help: "Publish runs by outcome.",
		}, []string{"outcome"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adpush_publish_last_success_timestamp_seconds",
			Help: "Unix time of the last successful publish.",
		}),
		orderingID: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adpush_publish_ordering_id",
			Help: "Ordering id of the last committed batch.",
		}),
	}

	reg.MustRegister(
		c.issues,
		c.users,
		c.documents,
		c.stepDuration,
		c.stepFailures,
		c.runs,
		c.lastSuccess,
		c.orderingID,
	)

	return c
}

// RecordIssue counts one reported issue.
func (c *Collector) RecordIssue(kind domain.IssueKind) {
	c.issues.WithLabelValues(kind.String()).Inc()
}

// RecordUsers sets the crawled user count.
func (c *Collector) RecordUsers(count int) {
	c.users.Set(float64(count))
}

// RecordDocuments sets the batch size.
func (c *Collector) RecordDocuments(count int) {
	c.documents.Set(float64(count))
}

// RecordStep observes one protocol step.
func (c *Collector) RecordStep(step domain.PublishStep, duration time.Duration, err error) {
	c.stepDuration.WithLabelValues(step.String()).Observe(duration.Seconds())
	if err != nil {
		c.stepFailures.WithLabelValues(step.String()).Inc()
	}
}

// RecordRun counts a finished publish run.
func (c *Collector) RecordRun(run domain.PublishRun) {
	if !run.Success {
		c.runs.WithLabelValues("failure").Inc()
		return
	}
	c.runs.WithLabelValues("success").Inc()
	c.orderingID.Set(float64(run.OrderingID))
	if !run.EndedAt.IsZero() {
		c.lastSuccess.Set(float64(run.EndedAt.Unix()))
	}
}

// WriteTextfile writes every gathered metric to path in the text
// exposition format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.gatherer)
}
