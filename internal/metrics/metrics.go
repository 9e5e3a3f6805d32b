// Package metrics exposes Prometheus counters for sync activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Materialization phases.
const (
	PhaseBulk    = "bulk"
	PhaseOverlay = "overlay"
	PhaseLive    = "live"
)

// Reasons a bulk record is dropped.
const (
	ReasonMalformed = "malformed"
	ReasonSystem    = "system"
	ReasonDraft     = "draft"
	ReasonType      = "undeclared_type"
)

var (
	// DocumentsMaterialized counts node upserts by phase.
	DocumentsMaterialized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lakesync_documents_materialized_total",
		Help: "Documents written to the node store by phase",
	}, []string{"phase"})

	// RecordsDropped counts export records that never reached the store.
	RecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lakesync_records_dropped_total",
		Help: "Export records dropped by reason",
	}, []string{"reason"})

	// ListenerActions counts listener decisions by action.
	ListenerActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lakesync_listener_actions_total",
		Help: "Live events handled by resulting action",
	}, []string{"action"})

	// IngestDuration observes full bulk load duration.
	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lakesync_ingest_duration_seconds",
		Help:    "Bulk load duration including the draft overlay pass",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
