package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/claimgate/pkg/codes"
)

func intPtr(n int) *int { return &n }

func testCode(code string, units, maxUnits int) codes.ProcedureCode {
	return codes.ProcedureCode{
		Code:     code,
		Units:    &units,
		MaxUnits: &maxUnits,
		Override: codes.OverrideConditional,
	}
}

func TestNewLineItem(t *testing.T) {
	line := NewLineItem(testCode("12345", 3, 1), 1)
	assert.Equal(t, "12345-1", line.ID)
	assert.Equal(t, 3, line.Units)
	assert.Empty(t, line.ComplianceModifiers)
	assert.Empty(t, line.AncillaryModifiers)
}

func TestModifiersOrder(t *testing.T) {
	line := NewLineItem(testCode("12345", 1, 1), 1)
	line.AddAncillaryModifier("50")
	line.AddComplianceModifier("59")
	line.AddAncillaryModifier("80")

	// Compliance-phase modifiers come first in the final set.
	assert.Equal(t, []string{"59", "50", "80"}, line.Modifiers())
}

func TestTruncate(t *testing.T) {
	line := NewLineItem(testCode("12345", 3, 1), 1)
	line.Truncate(1)

	assert.Equal(t, 1, line.Units)
	require.NotNil(t, line.Note)
	assert.Equal(t, codes.SeverityError, line.Note.Severity)
	assert.Equal(t, 3, line.Note.OriginalUnits)
	assert.Equal(t, 1, line.Note.TruncatedUnits)
}

func TestTruncateIdempotent(t *testing.T) {
	line := NewLineItem(testCode("12345", 3, 1), 1)
	line.Truncate(1)
	line.Truncate(1)

	// No double truncation: units and the recorded original stay put.
	assert.Equal(t, 1, line.Units)
	assert.Equal(t, 3, line.Note.OriginalUnits)
	assert.Equal(t, 1, line.Note.TruncatedUnits)
}

func TestTruncateFloorsAtOne(t *testing.T) {
	line := NewLineItem(testCode("12345", 3, 1), 1)
	line.Truncate(0)
	assert.Equal(t, 1, line.Units)
}

func TestSplitInvariant(t *testing.T) {
	line := NewLineItem(testCode("12345", 3, 1), 1)
	parts := line.Split("76")

	require.Len(t, parts, 3)
	total := 0
	for i, part := range parts {
		total += part.Units
		assert.Equal(t, 1, part.Units)
		assert.Contains(t, part.ComplianceModifiers, "76")
		require.NotNil(t, part.Note)
		assert.Equal(t, codes.SeverityInfo, part.Note.Severity)
		assert.NotEqual(t, line.ID, part.ID, "split part %d must get a fresh identifier", i)
	}
	assert.Equal(t, 3, total, "sum of split units must equal the original unit count")
}

func TestSplitInheritsModifiers(t *testing.T) {
	line := NewLineItem(testCode("12345", 2, 1), 1)
	line.AddComplianceModifier("59")
	parts := line.Split("76")

	for _, part := range parts {
		assert.Equal(t, []string{"59", "76"}, part.ComplianceModifiers)
	}
}

func TestLineSetReplace(t *testing.T) {
	first := NewLineItem(testCode("11111", 1, 1), 1)
	second := NewLineItem(testCode("12345", 2, 1), 1)
	set := NewLineSet([]*LineItem{first, second})

	parts := second.Split("76")
	ok := set.Replace(second.ID, parts)

	require.True(t, ok)
	assert.Equal(t, 3, set.Len())
	assert.Nil(t, set.ByID(second.ID))
	assert.NotNil(t, set.ByID(parts[0].ID))
	assert.Equal(t, first.ID, set.Items()[0].ID)
}

func TestLineSetReplaceUnknown(t *testing.T) {
	set := NewLineSet(nil)
	assert.False(t, set.Replace("missing", nil))
}
