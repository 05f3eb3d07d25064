package adjudicate

import (
	"fmt"
	"strings"
)

// EditType names the compliance edit a decision resolves.
type EditType string

const (
	// EditPairwiseConflict is a procedure-to-procedure billing edit.
	EditPairwiseConflict EditType = "pairwise_conflict"
	// EditUnitLimit is a per-code maximum-unit billing edit.
	EditUnitLimit EditType = "unit_limit"
)

// ComplianceDecision is one Phase 1 adjudication outcome. Modifier may
// be empty: absence of justification is a valid outcome for pairwise
// conflicts. SupportsOverride is only meaningful for unit-limit
// decisions; an absent field is treated as a denial, since silence must
// never authorize billing above the regulatory limit.
type ComplianceDecision struct {
	LineID           string   `json:"line_id"`
	Code             string   `json:"code"`
	EditType         EditType `json:"edit_type"`
	Modifier         string   `json:"modifier,omitempty"`
	Rationale        string   `json:"rationale,omitempty"`
	SupportsOverride *bool    `json:"supports_override,omitempty"`
	Evidence         []string `json:"evidence,omitempty"`
}

// OverrideSupported reports the unit-limit verdict, treating an absent
// field as false.
func (d ComplianceDecision) OverrideSupported() bool {
	return d.SupportsOverride != nil && *d.SupportsOverride
}

// Validate rejects malformed decisions at the boundary rather than
// silently defaulting fields.
func (d ComplianceDecision) Validate() error {
	if strings.TrimSpace(d.LineID) == "" {
		return fmt.Errorf("compliance decision: line_id required")
	}
	if strings.TrimSpace(d.Code) == "" {
		return fmt.Errorf("compliance decision %s: code required", d.LineID)
	}
	switch d.EditType {
	case EditPairwiseConflict, EditUnitLimit:
	default:
		return fmt.Errorf("compliance decision %s: edit_type %q unknown", d.LineID, d.EditType)
	}
	return nil
}

// complianceResponse is the wire shape of a Phase 1 batch response.
type complianceResponse struct {
	Decisions []ComplianceDecision `json:"decisions"`
}

func (r complianceResponse) Validate() error {
	for i, d := range r.Decisions {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("decisions[%d]: %w", i, err)
		}
	}
	return nil
}

// ModifierAssignment is one ancillary modifier proposed for a line.
type ModifierAssignment struct {
	Modifier    string   `json:"modifier"`
	Rationale   string   `json:"rationale,omitempty"`
	Description string   `json:"description,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// AncillaryLine is one Phase 2 adjudication outcome: zero or more
// documentation-driven modifiers for a line.
type AncillaryLine struct {
	LineID    string               `json:"line_id"`
	Modifiers []ModifierAssignment `json:"modifiers"`
}

// Validate rejects malformed ancillary lines at the boundary.
func (l AncillaryLine) Validate() error {
	if strings.TrimSpace(l.LineID) == "" {
		return fmt.Errorf("ancillary line: line_id required")
	}
	for i, m := range l.Modifiers {
		if strings.TrimSpace(m.Modifier) == "" {
			return fmt.Errorf("ancillary line %s: modifiers[%d] empty", l.LineID, i)
		}
	}
	return nil
}

// ancillaryResponse is the wire shape of a Phase 2 batch response.
type ancillaryResponse struct {
	Lines []AncillaryLine `json:"lines"`
}

func (r ancillaryResponse) Validate() error {
	for i, l := range r.Lines {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("lines[%d]: %w", i, err)
		}
	}
	return nil
}
