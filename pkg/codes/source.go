package codes

import "fmt"

// ConflictSource supplies pairwise conflict records and per-code unit
// limits for a billing jurisdiction. Implementations live outside the
// engine; the engine only consumes records already fetched for a run.
type ConflictSource interface {
	// LookupConflicts returns every conflict record in which the code
	// participates.
	LookupConflicts(code string) ([]ConflictRecord, error)

	// LookupUnitLimit returns the maximum-unit record for a code under
	// the given service type.
	LookupUnitLimit(code, serviceType string) (UnitLimit, error)
}

// StaticSource is an in-memory ConflictSource backed by fixture data,
// used by the CLI and tests.
type StaticSource struct {
	Conflicts []ConflictRecord
	Limits    map[string]UnitLimit
}

// NewStaticSource builds a StaticSource from explicit records.
func NewStaticSource(conflicts []ConflictRecord, limits map[string]UnitLimit) *StaticSource {
	if limits == nil {
		limits = make(map[string]UnitLimit)
	}
	return &StaticSource{Conflicts: conflicts, Limits: limits}
}

// LookupConflicts returns records involving the code.
func (s *StaticSource) LookupConflicts(code string) ([]ConflictRecord, error) {
	var out []ConflictRecord
	for _, rec := range s.Conflicts {
		if rec.Primary == code || rec.Secondary == code {
			out = append(out, rec)
		}
	}
	return out, nil
}

// LookupUnitLimit returns the configured limit for the code. Service
// type is ignored by the static fixture.
func (s *StaticSource) LookupUnitLimit(code, serviceType string) (UnitLimit, error) {
	limit, ok := s.Limits[code]
	if !ok {
		return UnitLimit{}, fmt.Errorf("no unit limit on record for code %s", code)
	}
	return limit, nil
}
