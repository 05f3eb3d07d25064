package engine

import (
	"context"
	"fmt"

	"github.com/zen-systems/claimgate/pkg/adjudicate"
	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

// resolveCompliance runs Phase 1 over the gated lines: one batched
// adjudication call, then per-decision application. A call failure
// degrades the whole phase to a no-op; the lines pass through
// unresolved.
func (e *Engine) resolveCompliance(ctx context.Context, adj *adjudicate.Adjudicator, set *claim.LineSet, gated []adjudicate.ComplianceItem, arena *codes.ConflictSet, clinicalText string, collector *evidence.Collector) []*ProcessingError {
	if len(gated) == 0 {
		return nil
	}

	decisions, err := adj.AdjudicateCompliance(ctx, gated, clinicalText)
	if err != nil {
		collector.Record(evidence.KindPhaseDegraded, "", "", fmt.Sprintf("compliance phase degraded: %v", err), nil)
		return []*ProcessingError{adjudicationError("compliance phase", err)}
	}

	gatedIDs := make(map[string]bool, len(gated))
	for _, item := range gated {
		gatedIDs[item.Line.ID] = true
	}

	var errs []*ProcessingError
	for _, decision := range decisions {
		line := set.ByID(decision.LineID)
		if line == nil {
			errs = append(errs, decisionError(
				fmt.Sprintf("decision references unknown line %s", decision.LineID),
				map[string]string{"line_id": decision.LineID, "code": decision.Code}))
			continue
		}
		// An ungated line never takes a compliance-phase edit, even if
		// the adjudicator volunteers one.
		if !gatedIDs[line.ID] {
			errs = append(errs, decisionError(
				fmt.Sprintf("decision targets ungated line %s", decision.LineID),
				map[string]string{"line_id": decision.LineID, "code": decision.Code}))
			continue
		}

		switch decision.EditType {
		case adjudicate.EditPairwiseConflict:
			e.applyConflictDecision(line, decision, arena, collector)
		case adjudicate.EditUnitLimit:
			e.applyUnitDecision(set, line, decision, collector)
		}
	}
	return errs
}

// applyConflictDecision attaches the chosen modifier and attempts the
// conflict-record downgrade. A decision with no modifier leaves the
// line unresolved; absence of justification is a valid outcome.
func (e *Engine) applyConflictDecision(line *claim.LineItem, decision adjudicate.ComplianceDecision, arena *codes.ConflictSet, collector *evidence.Collector) {
	if decision.Modifier == "" {
		return
	}
	line.AddComplianceModifier(decision.Modifier)

	for _, rec := range arena.SecondaryTo(decision.Code) {
		if !rec.Overridable() || !rec.AllowsModifier(decision.Modifier) {
			continue
		}
		if _, downgraded := arena.Resolve(rec.Primary, rec.Secondary); downgraded {
			if line.Note == nil {
				line.Note = &claim.ComplianceNote{
					Message:  fmt.Sprintf("conflict between %s and %s resolved with modifier %s", rec.Primary, rec.Secondary, decision.Modifier),
					Severity: codes.SeverityInfo,
				}
			}
			collector.Record(evidence.KindConflictResolved, line.ID, decision.Code,
				fmt.Sprintf("conflict (%s, %s) downgraded with modifier %s", rec.Primary, rec.Secondary, decision.Modifier),
				map[string]string{"modifier": decision.Modifier, "rationale": decision.Rationale})
		}
	}
}

// applyUnitDecision splits an approved bypass into single-unit lines or
// truncates a denied one. Silence on the override verdict is a denial.
func (e *Engine) applyUnitDecision(set *claim.LineSet, line *claim.LineItem, decision adjudicate.ComplianceDecision, collector *evidence.Collector) {
	maxUnits := 1
	if line.Code.MaxUnits != nil {
		maxUnits = *line.Code.MaxUnits
	}

	if decision.OverrideSupported() && decision.Modifier != "" {
		originalUnits := line.Units
		parts := line.Split(decision.Modifier)
		set.Replace(line.ID, parts)
		collector.Record(evidence.KindUnitSplit, line.ID, line.Code.Code,
			fmt.Sprintf("line %s split into %d single-unit lines with modifier %s", line.ID, originalUnits, decision.Modifier),
			map[string]string{"modifier": decision.Modifier, "rationale": decision.Rationale})
		return
	}

	originalUnits := line.Units
	line.Truncate(maxUnits)
	collector.Record(evidence.KindUnitTruncated, line.ID, line.Code.Code,
		fmt.Sprintf("line %s truncated from %d to %d unit(s)", line.ID, originalUnits, line.Units),
		map[string]string{"rationale": decision.Rationale})
}
