package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Refresh loop metrics ───────────────────────────────────────────────

var (
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "refresh",
		Name:      "total",
		Help:      "Total number of refresh cycles per view.",
	}, []string{"view", "status"})

	RefreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "refresh",
		Name:      "duration_seconds",
		Help:      "Duration of a refresh fetch per view in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"view"})

	RefreshLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "refresh",
		Name:      "last_success_timestamp",
		Help:      "Unix timestamp of the last successful refresh per view.",
	}, []string{"view"})

	RefreshSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "refresh",
		Name:      "skipped_total",
		Help:      "Refreshes skipped because a fetch was already in flight.",
	}, []string{"view"})

	SnapshotCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "snapshot",
		Name:      "count",
		Help:      "Number of snapshots currently held per view.",
	}, []string{"view"})

	SnapshotAge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "snapshot",
		Name:      "age_seconds",
		Help:      "Age of the newest held snapshot in seconds per view.",
	}, []string{"view"})

	UnparsableRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "snapshot",
		Name:      "unparsable",
		Help:      "Records of the selected position left out of its series because a numeric field did not parse.",
	}, []string{"view"})
)

// ── Record source metrics ──────────────────────────────────────────────

var (
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Record cache lookups by result (hit, miss, error).",
	}, []string{"result"})
)

// ── Business metrics ───────────────────────────────────────────────────

var (
	LockedValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "business",
		Name:      "locked_value",
		Help:      "Locked value of the selected position at its latest snapshot.",
	}, []string{"position"})

	PendingYield = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "business",
		Name:      "pending_yield",
		Help:      "Uncollected fees of the selected position at its latest snapshot.",
	}, []string{"position"})

	TrackedPositions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "whirlpool_monitor",
		Subsystem: "business",
		Name:      "tracked_positions",
		Help:      "Number of distinct positions in the current snapshot collection.",
	}, []string{"view"})
)
