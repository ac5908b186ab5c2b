// Package stats provides real-time query statistics collection for the
// query-serving process. It tracks per-query-mode counters (install, build,
// self, reverse), result sizes, and a sliding-window query rate.
//
// The stats system uses a 1 Hz sampling loop to notify registered consumers
// of a fresh snapshot, grounded on the teacher's StatsCollector shape but
// carrying query-mode counters instead of build-worker/load metrics.
package stats

import (
	"fmt"
	"time"
)

// Snapshot is the unified payload shared across all stats consumers.
type Snapshot struct {
	// Query Totals
	QueriesByMode map[string]int // mode -> count, e.g. "install" -> 42
	TotalQueries  int

	// Result Size Metrics
	TotalNodes     int     // sum of node counts across all completed queries
	MaxNodeCount   int     // largest single-query result
	AvgNodeCount   float64 // TotalNodes / TotalQueries

	// Resolution Metrics
	NotFoundCount int // total unresolved requirement components across all queries

	// Rate Metrics
	QueriesPerSec float64 // 60s sliding window

	// Timing
	Elapsed   time.Duration
	StartTime time.Time
}

// Consumer receives a fresh Snapshot on every 1 Hz tick. The Query Facade
// never depends on this directly; a query-serving process wires a Collector
// in as an optional resolve.Observer instead.
type Consumer interface {
	OnStatsUpdate(snap Snapshot)
}

// FormatDuration formats a duration as HH:MM:SS for display.
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatRate formats a queries/sec rate for display.
func FormatRate(rate float64) string {
	if rate < 0.01 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", rate)
}
