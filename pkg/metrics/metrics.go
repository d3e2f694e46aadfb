// Package metrics exports the process-wide Prometheus collectors. The
// interesting signals are the ones the migration can silently lose data
// through: swallowed secondary-store failures, fallback reads, and the
// verifier's match state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SecondaryWriteFailures counts best-effort writes against the
	// non-authoritative store that were logged and swallowed.
	SecondaryWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftdb_secondary_write_failures_total",
		Help: "Best-effort writes to the non-authoritative store that failed.",
	}, []string{"entity", "view"})

	// FallbackReads counts reads answered by the source store after the
	// target failed in the target-primary phase.
	FallbackReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiftdb_fallback_reads_total",
		Help: "Reads served by the source store after a target read failure.",
	})

	// BackfillMigrated / BackfillErrors track backfill progress per entity
	// type across runs.
	BackfillMigrated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftdb_backfill_migrated_total",
		Help: "Entities copied into the target store by the backfill engine.",
	}, []string{"entity"})

	BackfillErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftdb_backfill_errors_total",
		Help: "Entities the backfill engine failed to copy.",
	}, []string{"entity"})

	// VerifyMatch is 1 while the last verification found matching counts
	// for the collection, 0 otherwise.
	VerifyMatch = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shiftdb_verify_match",
		Help: "1 if the last consistency check matched for the collection.",
	}, []string{"collection"})

	// RequestDuration times HTTP requests by method and status class.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shiftdb_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)
