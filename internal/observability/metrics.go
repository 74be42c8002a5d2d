// Package observability holds Prometheus collectors and OpenTelemetry tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threads_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threads_cache_lookups_total",
		Help: "Cache lookups by key family and result",
	}, []string{"family", "result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "threads_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReactionToggles counts like/dislike toggles by requested kind and outcome.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threads_reaction_toggles_total",
		Help: "Reaction toggles by requested kind and outcome",
	}, []string{"kind", "outcome"})

	// FollowToggles counts follow toggles by outcome (followed, unfollowed).
	FollowToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threads_follow_toggles_total",
		Help: "Follow toggles by outcome",
	}, []string{"outcome"})

	// AssetHostFailures counts failed asset host calls by operation (upload, destroy).
	AssetHostFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threads_asset_host_failures_total",
		Help: "Failed asset host calls by operation",
	}, []string{"operation"})
)

const queryStartKey = "threads:query_start"

// RegisterQueryMetrics installs GORM callbacks that observe the latency of
// every create, query, update, delete and raw statement.
func RegisterQueryMetrics(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("metrics:before_create", startQueryTimer) },
		func() error { return cb.Create().After("gorm:create").Register("metrics:after_create", observeQuery("create")) },
		func() error { return cb.Query().Before("gorm:query").Register("metrics:before_query", startQueryTimer) },
		func() error { return cb.Query().After("gorm:query").Register("metrics:after_query", observeQuery("query")) },
		func() error { return cb.Update().Before("gorm:update").Register("metrics:before_update", startQueryTimer) },
		func() error { return cb.Update().After("gorm:update").Register("metrics:after_update", observeQuery("update")) },
		func() error { return cb.Delete().Before("gorm:delete").Register("metrics:before_delete", startQueryTimer) },
		func() error { return cb.Delete().After("gorm:delete").Register("metrics:after_delete", observeQuery("delete")) },
		func() error { return cb.Raw().Before("gorm:raw").Register("metrics:before_raw", startQueryTimer) },
		func() error { return cb.Raw().After("gorm:raw").Register("metrics:after_raw", observeQuery("raw")) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func startQueryTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func observeQuery(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
