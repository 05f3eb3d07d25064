package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentTableDegradesAtThreshold(t *testing.T) {
	table := NewAssignmentTable(3, time.Minute)

	table.RecordFailure("c")
	table.RecordFailure("c")
	assert.False(t, table.Degraded("c"))

	table.RecordFailure("c")
	assert.True(t, table.Degraded("c"))
	assert.Equal(t, 3, table.Failures("c"))
}

func TestAssignmentTableSuccessRestoresPrimary(t *testing.T) {
	table := NewAssignmentTable(2, time.Minute)

	table.RecordFailure("c")
	table.RecordFailure("c")
	assert.True(t, table.Degraded("c"))

	table.RecordSuccess("c")
	assert.False(t, table.Degraded("c"))
	assert.Zero(t, table.Failures("c"))
}

func TestAssignmentTableWindowExpiryResetsCount(t *testing.T) {
	table := NewAssignmentTable(3, 5*time.Minute)
	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	table.now = func() time.Time { return clock }

	table.RecordFailure("c")
	table.RecordFailure("c")

	// Next failure lands outside the trailing window: stale count is
	// discarded before it is counted.
	clock = clock.Add(6 * time.Minute)
	table.RecordFailure("c")
	assert.Equal(t, 1, table.Failures("c"))
	assert.False(t, table.Degraded("c"))
}

func TestAssignmentTableDegradationExpires(t *testing.T) {
	table := NewAssignmentTable(2, 5*time.Minute)
	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	table.now = func() time.Time { return clock }

	table.RecordFailure("c")
	table.RecordFailure("c")
	assert.True(t, table.Degraded("c"))

	clock = clock.Add(6 * time.Minute)
	assert.False(t, table.Degraded("c"))
}

func TestAssignmentTableCallersIsolated(t *testing.T) {
	table := NewAssignmentTable(2, time.Minute)

	table.RecordFailure("a")
	table.RecordFailure("a")
	assert.True(t, table.Degraded("a"))
	assert.False(t, table.Degraded("b"))
	assert.Zero(t, table.Failures("b"))
}

func TestAssignmentTableZeroValuesUseDefaults(t *testing.T) {
	table := NewAssignmentTable(0, 0)
	assert.Equal(t, DefaultFailureThreshold, table.threshold)
	assert.Equal(t, DefaultFailureWindow, table.window)
}

func TestAssignmentTableReset(t *testing.T) {
	table := NewAssignmentTable(1, time.Minute)
	table.RecordFailure("c")
	assert.True(t, table.Degraded("c"))

	table.Reset()
	assert.False(t, table.Degraded("c"))
}
