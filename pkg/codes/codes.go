package codes

import "fmt"

// OverrideIndicator states whether a regulatory edit can ever be
// bypassed with a modifier.
type OverrideIndicator string

const (
	// OverrideNever means the edit can never be bypassed.
	OverrideNever OverrideIndicator = "never"
	// OverrideConditional means the edit can be bypassed when
	// documentation supports an allowed modifier.
	OverrideConditional OverrideIndicator = "conditionally"
	// OverrideFree means the edit can be bypassed without review.
	OverrideFree OverrideIndicator = "freely"
)

// Valid reports whether the indicator is one of the three known values.
func (o OverrideIndicator) Valid() bool {
	switch o {
	case OverrideNever, OverrideConditional, OverrideFree:
		return true
	}
	return false
}

// Severity classifies a conflict or compliance annotation.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityInfo     Severity = "informational"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// ProcedureCode is a billable procedure as supplied by the caller.
// Immutable once passed into the engine.
type ProcedureCode struct {
	Code             string            `json:"code" yaml:"code"`
	Description      string            `json:"description,omitempty" yaml:"description,omitempty"`
	Units            *int              `json:"units" yaml:"units"`
	MaxUnits         *int              `json:"max_units" yaml:"max_units"`
	Override         OverrideIndicator `json:"override" yaml:"override"`
	AllowedModifiers []string          `json:"allowed_modifiers,omitempty" yaml:"allowed_modifiers,omitempty"`
}

// Validate checks that the fields the engine depends on are present.
func (p ProcedureCode) Validate() error {
	if p.Code == "" {
		return fmt.Errorf("procedure code identifier required")
	}
	if p.Units == nil {
		return fmt.Errorf("procedure %s: unit count required", p.Code)
	}
	if *p.Units < 1 {
		return fmt.Errorf("procedure %s: unit count must be >= 1", p.Code)
	}
	if p.MaxUnits == nil {
		return fmt.Errorf("procedure %s: maximum allowed units required", p.Code)
	}
	if !p.Override.Valid() {
		return fmt.Errorf("procedure %s: override indicator %q unknown", p.Code, p.Override)
	}
	return nil
}

// PermitsModifier reports whether the code's reference data allows the
// given modifier.
func (p ProcedureCode) PermitsModifier(modifier string) bool {
	for _, m := range p.AllowedModifiers {
		if m == modifier {
			return true
		}
	}
	return false
}

// ConflictRecord is a pairwise procedure-to-procedure billing edit.
// Severity is mutated in place when the conflict is resolved; the
// downgraded record must stay visible to every consumer that re-reads
// the same conflict list within a run.
type ConflictRecord struct {
	Primary          string            `json:"primary" yaml:"primary"`
	Secondary        string            `json:"secondary" yaml:"secondary"`
	Override         OverrideIndicator `json:"override" yaml:"override"`
	Severity         Severity          `json:"severity" yaml:"severity"`
	AllowedModifiers []string          `json:"allowed_modifiers,omitempty" yaml:"allowed_modifiers,omitempty"`
}

// AllowsModifier reports whether the modifier is legally capable of
// resolving this conflict.
func (c *ConflictRecord) AllowsModifier(modifier string) bool {
	for _, m := range c.AllowedModifiers {
		if m == modifier {
			return true
		}
	}
	return false
}

// Overridable reports whether the record may be bypassed at all.
func (c *ConflictRecord) Overridable() bool {
	return c.Override == OverrideConditional || c.Override == OverrideFree
}

// UnitLimit is the per-code maximum-unit record for a jurisdiction.
type UnitLimit struct {
	MaxUnits int               `json:"max_units" yaml:"max_units"`
	Override OverrideIndicator `json:"override" yaml:"override"`
}
