// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus metrics of a journal club run. The
// bot is a batch job, so metrics live in a private registry that is written
// to a node-exporter textfile when the run ends.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "journal_club"

// Metrics contains the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	// PapersProcessed counts candidates by outcome ("published", "failed").
	PapersProcessed *prometheus.CounterVec

	// ModelCalls counts model invocations by role and status ("ok", "error", "rate_limited").
	ModelCalls *prometheus.CounterVec

	// ModelCallDuration observes model invocation latency by role.
	ModelCallDuration *prometheus.HistogramVec

	// ModelTokens counts tokens by role and kind ("prompt", "completion").
	ModelTokens *prometheus.CounterVec

	// MessagesPosted counts messages by kind ("header", "reply", "notice", "attachment", "announcement").
	MessagesPosted *prometheus.CounterVec

	// CandidatesSelected is the number of candidates of the last run.
	CandidatesSelected prometheus.Gauge

	// RunDuration is the wall time of the last run in seconds.
	RunDuration prometheus.Gauge

	// LastRunTimestamp is the unix time the last run finished.
	LastRunTimestamp prometheus.Gauge
}

// New creates the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		PapersProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_processed_total",
			Help:      "Candidates processed, by outcome.",
		}, []string{"status"}),
		ModelCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model invocations, by role and status.",
		}, []string{"role", "status"}),
		ModelCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Model invocation latency, by role.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"role"}),
		ModelTokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_tokens_total",
			Help:      "Tokens reported by the model provider, by role and kind.",
		}, []string{"role", "kind"}),
		MessagesPosted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_posted_total",
			Help:      "Messages posted to the channel, by kind.",
		}, []string{"kind"}),
		CandidatesSelected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates_selected",
			Help:      "Candidates handed to the batch runner in the last run.",
		}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ModelCall records one model invocation.
func (m *Metrics) ModelCall(role, status string, d time.Duration, promptTokens, completionTokens int64) {
	if m == nil {
		return
	}
	m.ModelCalls.WithLabelValues(role, status).Inc()
	m.ModelCallDuration.WithLabelValues(role).Observe(d.Seconds())
	if promptTokens > 0 {
		m.ModelTokens.WithLabelValues(role, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.ModelTokens.WithLabelValues(role, "completion").Add(float64(completionTokens))
	}
}

// PaperProcessed records the outcome of one candidate.
func (m *Metrics) PaperProcessed(status string) {
	if m == nil {
		return
	}
	m.PapersProcessed.WithLabelValues(status).Inc()
}

// MessagePosted records one posted message.
func (m *Metrics) MessagePosted(kind string) {
	if m == nil {
		return
	}
	m.MessagesPosted.WithLabelValues(kind).Inc()
}

// Candidates records the size of the candidate list.
func (m *Metrics) Candidates(n int) {
	if m == nil {
		return
	}
	m.CandidatesSelected.Set(float64(n))
}

// RunFinished records the run wall time.
func (m *Metrics) RunFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Set(d.Seconds())
	m.LastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile writes the registry in the text exposition format. The file
// is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
