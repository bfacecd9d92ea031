package database

import (
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "incident_query"

// QueryMetrics tracks query latency and failures per named query and logs
// queries slower than the configured threshold.
type QueryMetrics struct {
	duration  *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	slow      *prometheus.CounterVec
	threshold time.Duration
	logger    *slog.Logger
}

// NewQueryMetrics registers the query metrics on reg. A nil reg creates
// unregistered metrics, which is what tests use.
func NewQueryMetrics(reg prometheus.Registerer, slowQueryThreshold time.Duration, logger *slog.Logger) *QueryMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	factory := promauto.With(reg)

	return &QueryMetrics{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration, labeled by query name",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of failed database queries",
		}, []string{"query"}),
		slow: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "slow_queries_total",
			Help:      "Total number of queries slower than the slow query threshold",
		}, []string{"query"}),
		threshold: slowQueryThreshold,
		logger:    logger,
	}
}

// Observe records the outcome of the query named name that started at start.
// It is safe to call on a nil receiver.
func (m *QueryMetrics) Observe(name string, start time.Time, err error) {
	if m == nil {
		return
	}
	elapsed := time.Since(start)
	m.duration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		m.errors.WithLabelValues(name).Inc()
	}

	if m.threshold > 0 && elapsed > m.threshold {
		m.slow.WithLabelValues(name).Inc()
		attrs := []any{slog.String("query", name), slog.Duration("duration", elapsed)}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		m.logger.Warn("slow database query", attrs...)
	}
}

// RegisterPoolCollector exports the pool's sql.DBStats (open, in-use and
// idle connections, waits) on reg.
func RegisterPoolCollector(reg prometheus.Registerer, db *sqlx.DB, dbName string) error {
	return reg.Register(collectors.NewDBStatsCollector(db.DB, dbName))
}
