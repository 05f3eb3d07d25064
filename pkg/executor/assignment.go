package executor

import (
	"sync"
	"time"
)

const (
	// DefaultFailureThreshold is the rolling failure count that demotes
	// a caller to its fallback route.
	DefaultFailureThreshold = 3
	// DefaultFailureWindow is the trailing window the failure count is
	// evaluated over.
	DefaultFailureWindow = 5 * time.Minute
)

// assignment is the per-caller routing record. Guarded by its own
// mutex so concurrent claims touching different callers never contend.
type assignment struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
}

// AssignmentTable holds sticky backend assignments per logical caller.
// Process-wide state with process lifetime: created at startup, never
// persisted, cleared only by Reset. Pass it to the executor as a
// constructor dependency.
type AssignmentTable struct {
	mu        sync.Mutex
	records   map[string]*assignment
	threshold int
	window    time.Duration
	now       func() time.Time
}

// NewAssignmentTable creates a table with the given demotion threshold
// and trailing window. Zero values fall back to the defaults.
func NewAssignmentTable(threshold int, window time.Duration) *AssignmentTable {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if window <= 0 {
		window = DefaultFailureWindow
	}
	return &AssignmentTable{
		records:   make(map[string]*assignment),
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

func (t *AssignmentTable) record(caller string) *assignment {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[caller]
	if !ok {
		rec = &assignment{}
		t.records[caller] = rec
	}
	return rec
}

// RecordFailure counts one failed call against the caller. Failures
// older than the trailing window are discarded before counting.
func (t *AssignmentTable) RecordFailure(caller string) {
	rec := t.record(caller)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	now := t.now()
	if !rec.lastFailure.IsZero() && now.Sub(rec.lastFailure) > t.window {
		rec.failures = 0
	}
	rec.failures++
	rec.lastFailure = now
}

// RecordSuccess restores the caller to its primary assignment.
func (t *AssignmentTable) RecordSuccess(caller string) {
	rec := t.record(caller)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.failures = 0
	rec.lastFailure = time.Time{}
}

// Degraded reports whether the caller has crossed the failure threshold
// within the trailing window and should use its fallback route.
func (t *AssignmentTable) Degraded(caller string) bool {
	rec := t.record(caller)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.failures < t.threshold {
		return false
	}
	return t.now().Sub(rec.lastFailure) <= t.window
}

// Failures returns the caller's current rolling failure count.
func (t *AssignmentTable) Failures(caller string) int {
	rec := t.record(caller)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.failures
}

// Reset clears every assignment. Administrative action only; nothing
// in the engine calls this.
func (t *AssignmentTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[string]*assignment)
}
