package engine

import (
	"context"
	"fmt"

	"github.com/zen-systems/claimgate/pkg/adjudicate"
	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

// ancillarySubset filters a line's permitted modifiers down to the
// documentation-driven subset: modifiers reserved for conflict
// resolution never appear in a Phase 2 request, and neither do
// modifiers the line already carries from Phase 1.
func ancillarySubset(line *claim.LineItem, reserved []string) []string {
	excluded := make(map[string]bool, len(reserved)+len(line.ComplianceModifiers))
	for _, m := range reserved {
		excluded[m] = true
	}
	for _, m := range line.ComplianceModifiers {
		excluded[m] = true
	}
	var out []string
	for _, m := range line.Code.AllowedModifiers {
		if !excluded[m] {
			out = append(out, m)
		}
	}
	return out
}

// resolveAncillary runs Phase 2 over the full working set. Unlike
// Phase 1 it is not conditionally gated: ancillary modifiers are
// independent of the compliance-edit triggers. A call failure degrades
// the phase to a no-op.
func (e *Engine) resolveAncillary(ctx context.Context, adj *adjudicate.Adjudicator, set *claim.LineSet, arena *codes.ConflictSet, clinicalText string, collector *evidence.Collector) []*ProcessingError {
	if set.Len() == 0 {
		return nil
	}

	reserved := arena.ReservedModifiers()
	items := make([]adjudicate.AncillaryItem, 0, set.Len())
	for _, line := range set.Items() {
		items = append(items, adjudicate.AncillaryItem{
			Line:               line,
			PermittedModifiers: ancillarySubset(line, reserved),
		})
	}

	lines, err := adj.AdjudicateAncillary(ctx, items, clinicalText)
	if err != nil {
		collector.Record(evidence.KindPhaseDegraded, "", "", fmt.Sprintf("ancillary phase degraded: %v", err), nil)
		return []*ProcessingError{adjudicationError("ancillary phase", err)}
	}

	var errs []*ProcessingError
	for _, decided := range lines {
		line := set.ByID(decided.LineID)
		if line == nil {
			errs = append(errs, decisionError(
				fmt.Sprintf("ancillary decision references unknown line %s", decided.LineID),
				map[string]string{"line_id": decided.LineID}))
			continue
		}
		for _, assignment := range decided.Modifiers {
			line.AddAncillaryModifier(assignment.Modifier)
		}
	}
	return errs
}
