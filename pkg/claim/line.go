package claim

import (
	"fmt"

	"github.com/zen-systems/claimgate/pkg/codes"
)

// ComplianceNote annotates a line item with the outcome of a
// compliance edit.
type ComplianceNote struct {
	Message        string         `json:"message"`
	Severity       codes.Severity `json:"severity"`
	OriginalUnits  int            `json:"original_units,omitempty"`
	TruncatedUnits int            `json:"truncated_units,omitempty"`
}

// LineItem is one billable row on a claim. Created by the materializer
// and owned by the engine for the duration of a run. Units is always
// >= 1.
type LineItem struct {
	ID                  string
	Code                codes.ProcedureCode
	Units               int
	ComplianceModifiers []string
	AncillaryModifiers  []string
	Note                *ComplianceNote
}

// NewLineItem materializes a line item for a procedure code. The line
// identifier is derived from the code and its ordinal within the claim.
func NewLineItem(code codes.ProcedureCode, ordinal int) *LineItem {
	return &LineItem{
		ID:    fmt.Sprintf("%s-%d", code.Code, ordinal),
		Code:  code,
		Units: *code.Units,
	}
}

// AddComplianceModifier appends a modifier from Phase 1 resolution.
func (l *LineItem) AddComplianceModifier(modifier string) {
	l.ComplianceModifiers = append(l.ComplianceModifiers, modifier)
}

// AddAncillaryModifier appends a modifier from Phase 2 resolution.
func (l *LineItem) AddAncillaryModifier(modifier string) {
	l.AncillaryModifiers = append(l.AncillaryModifiers, modifier)
}

// Modifiers returns the final modifier set: compliance-phase modifiers
// followed by ancillary-phase modifiers.
func (l *LineItem) Modifiers() []string {
	out := make([]string, 0, len(l.ComplianceModifiers)+len(l.AncillaryModifiers))
	out = append(out, l.ComplianceModifiers...)
	out = append(out, l.AncillaryModifiers...)
	return out
}

// Truncate denies a unit-limit bypass: units drop to maxUnits and an
// error-severity note records the original and truncated counts.
// Idempotent: truncating an already-truncated line keeps the recorded
// original count and yields the same unit count.
func (l *LineItem) Truncate(maxUnits int) {
	if maxUnits < 1 {
		maxUnits = 1
	}
	if l.Units <= maxUnits {
		if l.Note == nil {
			l.Note = &ComplianceNote{
				Message:        fmt.Sprintf("units held at maximum of %d for %s", maxUnits, l.Code.Code),
				Severity:       codes.SeverityError,
				OriginalUnits:  l.Units,
				TruncatedUnits: l.Units,
			}
		}
		return
	}
	original := l.Units
	if l.Note != nil && l.Note.OriginalUnits > 0 {
		original = l.Note.OriginalUnits
	}
	l.Units = maxUnits
	l.Note = &ComplianceNote{
		Message:        fmt.Sprintf("units reduced from %d to %d for %s: documentation does not support exceeding the limit", original, maxUnits, l.Code.Code),
		Severity:       codes.SeverityError,
		OriginalUnits:  original,
		TruncatedUnits: maxUnits,
	}
}

// Split approves a unit-limit bypass: the line is replaced by Units
// single-unit lines, each carrying the resolving modifier and an
// informational note. The sum of units across the split equals the
// original unit count.
func (l *LineItem) Split(modifier string) []*LineItem {
	parts := make([]*LineItem, 0, l.Units)
	for i := 0; i < l.Units; i++ {
		part := &LineItem{
			ID:    fmt.Sprintf("%s-%d", l.ID, i+1),
			Code:  l.Code,
			Units: 1,
			Note: &ComplianceNote{
				Message:  fmt.Sprintf("unit %d of %d billed separately with modifier %s", i+1, l.Units, modifier),
				Severity: codes.SeverityInfo,
			},
		}
		part.ComplianceModifiers = append(part.ComplianceModifiers, l.ComplianceModifiers...)
		part.AddComplianceModifier(modifier)
		part.AncillaryModifiers = append(part.AncillaryModifiers, l.AncillaryModifiers...)
		parts = append(parts, part)
	}
	return parts
}
