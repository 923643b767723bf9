// Package observability provides Prometheus metrics for backfill runs.
package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"solana-metadata-backfill/internal/domain"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "metadata_backfill"

// Metrics holds the Prometheus metrics of one backfill run.
type Metrics struct {
	registry *prometheus.Registry

	OutcomesTotal    *prometheus.CounterVec
	StageFailures    *prometheus.CounterVec
	RPCCallLatency   *prometheus.HistogramVec
	RPCCallErrors    *prometheus.CounterVec
	PollAttempts     prometheus.Histogram
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates a Metrics instance on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		OutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "outcomes_total",
			Help:      "Mints processed, by outcome status",
		}, []string{"status"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "stage_failures_total",
			Help:      "Failed mints, by the stage that failed",
		}, []string{"stage"}),
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "JSON-RPC call latency including retries",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_errors_total",
			Help:      "JSON-RPC calls that returned an error",
		}, []string{"method"}),
		PollAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "poll_attempts",
			Help:      "Confirmation checks per submitted transaction",
			Buckets:   prometheus.LinearBuckets(1, 1, 6),
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Registry exposes the private registry, mainly for tests and pushing.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordOutcome counts a finished mint.
func (m *Metrics) RecordOutcome(o *domain.Outcome) {
	if m == nil || o == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(string(o.Status)).Inc()
	if o.Status == domain.OutcomeFailed && o.Stage != "" {
		m.StageFailures.WithLabelValues(o.Stage).Inc()
	}
	if o.PollAttempts > 0 {
		m.PollAttempts.Observe(float64(o.PollAttempts))
	}
}

// ObserveRPC records one JSON-RPC call. Its signature matches solana.CallObserver.
func (m *Metrics) ObserveRPC(method string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.RPCCallLatency.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		m.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordRun sets the run gauges.
func (m *Metrics) RecordRun(elapsed time.Duration, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.RunDuration.Set(elapsed.Seconds())
	m.LastRunTimestamp.Set(float64(finishedAt.Unix()))
}

// Push sends all metrics to a Prometheus Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
