package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce       sync.Once
	triggerChannel chan struct{}

	// EraseDuration tracks how long erase cycles take
	EraseDuration prometheus.Histogram

	// EntriesDeletedTotal counts files and directories actually removed
	EntriesDeletedTotal prometheus.Counter

	// BytesFreedTotal tracks total bytes freed across all cycles
	BytesFreedTotal prometheus.Counter

	// ErrorsTotal counts failed or blocked deletions
	ErrorsTotal prometheus.Counter

	// LastRunTimestamp records Unix timestamp of the last cycle
	LastRunTimestamp prometheus.Gauge

	// FreeSpacePercent tracks free disk space per configured root
	FreeSpacePercent *prometheus.GaugeVec

	// RootBytesDeletedTotal tracks bytes deleted per configured root
	RootBytesDeletedTotal *prometheus.CounterVec
)

// Init initializes and registers all metrics with Prometheus.
// Safe to call multiple times (uses sync.Once).
func Init() {
	initOnce.Do(func() {
		EraseDuration = NewDurationHistogram(
			"treereaper_erase_duration_seconds",
			"Duration of erase cycles in seconds.",
		)
		EntriesDeletedTotal = NewCounter(
			"treereaper_entries_deleted_total",
			"Total number of filesystem entries deleted.",
		)
		BytesFreedTotal = NewCounter(
			"treereaper_bytes_freed_total",
			"Total bytes freed by deletions.",
		)
		ErrorsTotal = NewCounter(
			"treereaper_errors_total",
			"Total number of failed or blocked deletions.",
		)
		LastRunTimestamp = NewGauge(
			"treereaper_last_run_timestamp",
			"Timestamp of the last erase cycle (Unix epoch seconds).",
		)
		FreeSpacePercent = NewGaugeVec(
			"treereaper_free_space_percent",
			"Free disk space percentage per configured root.",
			[]string{"root"},
		)
		RootBytesDeletedTotal = NewCounterVec(
			"treereaper_root_bytes_deleted_total",
			"Total bytes deleted per configured root.",
			[]string{"root"},
		)

		prometheus.MustRegister(
			EraseDuration,
			EntriesDeletedTotal,
			BytesFreedTotal,
			ErrorsTotal,
			LastRunTimestamp,
			FreeSpacePercent,
			RootBytesDeletedTotal,
		)

		// Zero value so the series exists before the first cycle
		LastRunTimestamp.Set(0)

		triggerChannel = make(chan struct{}, 1)
	})
}

// RecordRun updates the last run timestamp to current time
func RecordRun() {
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordRootDeletion records bytes deleted under a specific root
func RecordRootDeletion(root string, bytes int64) {
	RootBytesDeletedTotal.WithLabelValues(root).Add(float64(bytes))
}

// Trigger returns the channel the /trigger endpoint signals on.
// The scheduler selects on it to start an off-interval cycle.
func Trigger() <-chan struct{} {
	return triggerChannel
}
