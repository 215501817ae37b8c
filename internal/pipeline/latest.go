package pipeline

import "sync/atomic"

// Latest holds the report of the most recent successful run. Watch mode
// stores into it from the watcher goroutine while the status API reads.
type Latest struct {
	report atomic.Pointer[Report]
}

// Store replaces the held report.
func (l *Latest) Store(r *Report) {
	l.report.Store(r)
}

// Load returns the held report, or nil before the first run.
func (l *Latest) Load() *Report {
	return l.report.Load()
}
