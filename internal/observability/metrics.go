package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashkeeper_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashkeeper_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RoleCacheLookups counts role overlap cache lookups by result (hit, miss).
	RoleCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashkeeper_role_cache_lookups_total",
		Help: "Role cache lookups by result",
	}, []string{"result"})

	// TransactionsTotal counts dashboard transactions by outcome (commit, rollback).
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashkeeper_transactions_total",
		Help: "Dashboard transactions by outcome",
	}, []string{"outcome"})

	// ModuleDashletsDeployed counts module dashlet rows written by action (insert, update, prune).
	ModuleDashletsDeployed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashkeeper_module_dashlets_deployed_total",
		Help: "Module dashlet catalog writes by action",
	}, []string{"action"})

	// HomesLoaded counts lazy home loads.
	HomesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashkeeper_homes_loaded_total",
		Help: "Number of times an active home was loaded from storage",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
