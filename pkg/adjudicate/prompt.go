package adjudicate

import (
	"fmt"
	"strings"

	"github.com/zen-systems/claimgate/pkg/adapter"
	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
)

// ComplianceItem is one gated line enriched with the conflict and
// unit-limit context that triggered gating.
type ComplianceItem struct {
	Line      *claim.LineItem
	Conflicts []*codes.ConflictRecord
	OverLimit bool
}

// AncillaryItem is one line enriched with its permitted ancillary
// modifier subset.
type AncillaryItem struct {
	Line               *claim.LineItem
	PermittedModifiers []string
}

const complianceSystem = `You are a clinical billing compliance reviewer.
You receive claim line items flagged by regulatory billing edits, together
with the clinical documentation for the encounter. For each flagged line,
decide whether the documentation justifies a bypass modifier.

Respond with a single JSON object of the form:
{"decisions": [{"line_id": "...", "code": "...", "edit_type": "pairwise_conflict" or "unit_limit", "modifier": "...", "rationale": "...", "supports_override": true or false, "evidence": ["verbatim excerpt", ...]}]}

Rules:
- Only choose a modifier listed as allowed for the line.
- Omit "modifier" entirely when the documentation does not justify one.
- "supports_override" is required for unit_limit decisions and must only
  be true when the documentation explicitly supports billing every unit.
- "evidence" must contain verbatim excerpts from the documentation.
- Return JSON only, with no surrounding prose.`

// BuildCompliancePrompt renders the batched Phase 1 request.
func BuildCompliancePrompt(items []ComplianceItem, clinicalText string) adapter.Request {
	var sb strings.Builder

	sb.WriteString("Flagged claim lines:\n\n")
	for _, item := range items {
		line := item.Line
		sb.WriteString(fmt.Sprintf("Line %s: code %s, %d unit(s)", line.ID, line.Code.Code, line.Units))
		if line.Code.Description != "" {
			sb.WriteString(" - " + line.Code.Description)
		}
		sb.WriteString("\n")
		for _, rec := range item.Conflicts {
			sb.WriteString(fmt.Sprintf("  conflict: %s billed with %s, allowed modifiers [%s]\n",
				rec.Secondary, rec.Primary, strings.Join(rec.AllowedModifiers, ", ")))
		}
		if item.OverLimit && line.Code.MaxUnits != nil {
			sb.WriteString(fmt.Sprintf("  unit limit: %d unit(s) billed, maximum allowed %d, allowed modifiers [%s]\n",
				line.Units, *line.Code.MaxUnits, strings.Join(line.Code.AllowedModifiers, ", ")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Clinical documentation:\n---\n")
	sb.WriteString(clinicalText)
	sb.WriteString("\n---\n")

	return adapter.Request{System: complianceSystem, User: sb.String()}
}

const ancillarySystem = `You are a clinical billing coder assigning
documentation-driven modifiers (laterality, staged procedure, assistant
surgeon, and similar) to claim line items. Compliance-edit bypass
modifiers are handled elsewhere and are excluded from the permitted sets.

Respond with a single JSON object of the form:
{"lines": [{"line_id": "...", "modifiers": [{"modifier": "...", "rationale": "...", "description": "...", "evidence": ["verbatim excerpt", ...]}]}]}

Rules:
- Only choose modifiers from the line's permitted set.
- A line with no supported modifier gets an empty "modifiers" list.
- "evidence" must contain verbatim excerpts from the documentation.
- Return JSON only, with no surrounding prose.`

// BuildAncillaryPrompt renders the batched Phase 2 request.
func BuildAncillaryPrompt(items []AncillaryItem, clinicalText string) adapter.Request {
	var sb strings.Builder

	sb.WriteString("Claim lines:\n\n")
	for _, item := range items {
		line := item.Line
		sb.WriteString(fmt.Sprintf("Line %s: code %s, %d unit(s)", line.ID, line.Code.Code, line.Units))
		if line.Code.Description != "" {
			sb.WriteString(" - " + line.Code.Description)
		}
		sb.WriteString(fmt.Sprintf("\n  permitted modifiers: [%s]\n\n", strings.Join(item.PermittedModifiers, ", ")))
	}

	sb.WriteString("Clinical documentation:\n---\n")
	sb.WriteString(clinicalText)
	sb.WriteString("\n---\n")

	return adapter.Request{System: ancillarySystem, User: sb.String()}
}
