package metrics

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64

	SessionsOpen       atomic.Int64
	UploadsAccepted    atomic.Uint64
	UploadsIgnored     atomic.Uint64
	AnalysesStarted    atomic.Uint64
	AnalysesCompleted  atomic.Uint64
	AnalysesDiscarded  atomic.Uint64
	InquiriesSubmitted atomic.Uint64

	StartTime time.Time
}

var global = &Metrics{StartTime: time.Now()}

// Global returns the process-wide counters.
func Global() *Metrics { return global }

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return map[string]any{
		"requests_total":       m.RequestsTotal.Load(),
		"requests_in_progress": m.RequestsInProgress.Load(),
		"requests_success":     m.RequestsSuccess.Load(),
		"requests_failed":      m.RequestsFailed.Load(),
		"sessions_open":        m.SessionsOpen.Load(),
		"uploads_accepted":     m.UploadsAccepted.Load(),
		"uploads_ignored":      m.UploadsIgnored.Load(),
		"analyses_started":     m.AnalysesStarted.Load(),
		"analyses_completed":   m.AnalysesCompleted.Load(),
		"analyses_discarded":   m.AnalysesDiscarded.Load(),
		"inquiries_submitted":  m.InquiriesSubmitted.Load(),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       ms.Alloc,
			"total_alloc_bytes": ms.TotalAlloc,
			"sys_bytes":         ms.Sys,
			"num_gc":            ms.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}
