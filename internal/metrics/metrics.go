// Package metrics holds the Prometheus collectors for the window manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mwm"

var (
	// EntityPagesTotal counts entity pages fetched from the index.
	EntityPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fetcher",
		Name:      "entity_pages_total",
		Help:      "Total entity pages fetched from the index.",
	})

	// FetchFailuresTotal counts selectors whose fetch failed and were treated as empty.
	FetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fetcher",
		Name:      "failures_total",
		Help:      "Total selector fetches that failed and were treated as zero results.",
	})

	// HostResolutionsTotal counts host lookups by the tier that resolved them.
	HostResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "resolver",
		Name:      "host_resolutions_total",
		Help:      "Host name lookups by resolving tier (exact, detected, contains, unresolved, error).",
	}, []string{"tier"})

	// AutoTagDeletionsTotal counts expired auto-tag deletions by result.
	AutoTagDeletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "autotag",
		Name:      "deletions_total",
		Help:      "Expired auto-tag rule deletions by result (deleted, failed).",
	}, []string{"result"})

	// AutoTagCreationsTotal counts auto-tag rule creations by result.
	AutoTagCreationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "autotag",
		Name:      "creations_total",
		Help:      "Auto-tag rule creations by result (created, failed).",
	}, []string{"result"})

	// WindowSavesTotal counts maintenance window saves by outcome.
	WindowSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "windows",
		Name:      "saves_total",
		Help:      "Maintenance window save attempts by outcome (success, invalid, tag_failed, failed).",
	}, []string{"outcome"})

	// CleanupRunsTotal counts auto-tag cleanup passes by result.
	CleanupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "autotag",
		Name:      "cleanup_runs_total",
		Help:      "Expired auto-tag cleanup passes by result (completed, scan_failed).",
	}, []string{"result"})
)
