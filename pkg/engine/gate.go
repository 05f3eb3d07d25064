package engine

import (
	"github.com/zen-systems/claimgate/pkg/adjudicate"
	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
)

// gatingConflicts returns the conflict records that put the line in
// scope for Phase 1: the line's code participates, the record is still
// blocking, and the edit is conditionally overridable. Records that
// can never be bypassed, or that are freely bypassed, need no
// adjudication.
func gatingConflicts(line *claim.LineItem, arena *codes.ConflictSet) []*codes.ConflictRecord {
	var out []*codes.ConflictRecord
	for _, rec := range arena.Involving(line.Code.Code) {
		if rec.Override == codes.OverrideConditional && rec.Severity == codes.SeverityBlocking {
			out = append(out, rec)
		}
	}
	return out
}

// overUnitLimit reports whether the line's unit count exceeds its
// maximum and the excess is conditionally overridable.
func overUnitLimit(line *claim.LineItem) bool {
	if line.Code.MaxUnits == nil {
		return false
	}
	return line.Units > *line.Code.MaxUnits && line.Code.Override == codes.OverrideConditional
}

// RequiresCompliance is the deterministic Phase 1 gate for a single
// line. Pure: no network calls, no mutation.
func RequiresCompliance(line *claim.LineItem, arena *codes.ConflictSet) bool {
	return len(gatingConflicts(line, arena)) > 0 || overUnitLimit(line)
}

// GateLines classifies the working set and enriches each gated line
// with the context that triggered gating. An empty result
// short-circuits Phase 1 entirely: no adjudication call is issued.
func GateLines(lines []*claim.LineItem, arena *codes.ConflictSet) []adjudicate.ComplianceItem {
	var gated []adjudicate.ComplianceItem
	for _, line := range lines {
		conflicts := gatingConflicts(line, arena)
		over := overUnitLimit(line)
		if len(conflicts) == 0 && !over {
			continue
		}
		gated = append(gated, adjudicate.ComplianceItem{
			Line:      line,
			Conflicts: conflicts,
			OverLimit: over,
		})
	}
	return gated
}
