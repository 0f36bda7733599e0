// pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbridge_search_pages_total",
		Help: "Backend search pages walked during task aggregation.",
	})
	TaskFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbridge_task_fetches_total",
		Help: "Individual task record fetches by outcome.",
	}, []string{"outcome"})
	EnrichLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbridge_enrich_lookups_total",
		Help: "Identity lookups performed during enrichment by kind and outcome.",
	}, []string{"kind", "outcome"})
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "taskbridge_search_duration_seconds",
		Help:    "End-to-end duration of an aggregated task search.",
		Buckets: prometheus.DefBuckets,
	})
	TenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbridge_tenant_resolutions_total",
		Help: "Tenant resolution attempts by outcome.",
	}, []string{"outcome"})
)
