package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the metrics contract shared by the ledger services.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
	RecordSkippedEntries(ctx context.Context, count int)
	RecordLedgerSize(ctx context.Context, historyRows, players int)
}

// PrometheusMetrics implements Metrics on a prometheus registry.
type PrometheusMetrics struct {
	attempts       *prometheus.CounterVec
	successes      *prometheus.CounterVec
	failures       *prometheus.CounterVec
	durations      *prometheus.HistogramVec
	skippedEntries prometheus.Counter
	historyRows    prometheus.Gauge
	players        prometheus.Gauge
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the ledger collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league_ledger",
			Name:      "operation_attempts_total",
			Help:      "Operations started, by operation name.",
		}, []string{"operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league_ledger",
			Name:      "operation_success_total",
			Help:      "Operations that committed, by operation name.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league_ledger",
			Name:      "operation_failure_total",
			Help:      "Operations that failed and rolled back, by operation name.",
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "league_ledger",
			Name:      "operation_duration_seconds",
			Help:      "Operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		skippedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "league_ledger",
			Name:      "skipped_points_entries_total",
			Help:      "Points entries skipped because the username is not on the roster.",
		}),
		historyRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "league_ledger",
			Name:      "debt_history_rows",
			Help:      "Debt history rows written by the last recompute.",
		}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "league_ledger",
			Name:      "debt_total_rows",
			Help:      "Debt totals written by the last recompute.",
		}),
	}

	collectors := []prometheus.Collector{
		m.attempts, m.successes, m.failures, m.durations,
		m.skippedEntries, m.historyRows, m.players,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.successes.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordSkippedEntries(_ context.Context, count int) {
	m.skippedEntries.Add(float64(count))
}

func (m *PrometheusMetrics) RecordLedgerSize(_ context.Context, historyRows, players int) {
	m.historyRows.Set(float64(historyRows))
	m.players.Set(float64(players))
}

// NoOpMetrics discards every observation.
type NoOpMetrics struct{}

var _ Metrics = (*NoOpMetrics)(nil)

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordSkippedEntries(context.Context, int)                      {}
func (NoOpMetrics) RecordLedgerSize(context.Context, int, int)                     {}
