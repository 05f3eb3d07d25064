package codes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClaimFile is the YAML input format consumed by the CLI: the
// procedure codes for one claim plus the conflict records and unit
// limits fetched for the jurisdiction.
type ClaimFile struct {
	ServiceType string               `yaml:"service_type,omitempty"`
	Procedures  []ProcedureCode      `yaml:"procedures"`
	Conflicts   []ConflictRecord     `yaml:"conflicts,omitempty"`
	UnitLimits  map[string]UnitLimit `yaml:"unit_limits,omitempty"`
}

// LoadClaimFile reads and parses a claim YAML file.
func LoadClaimFile(path string) (*ClaimFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim file: %w", err)
	}

	var file ClaimFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse claim file: %w", err)
	}
	if len(file.Procedures) == 0 {
		return nil, fmt.Errorf("claim file %s has no procedures", path)
	}

	file.applyUnitLimits()
	return &file, nil
}

// applyUnitLimits fills per-procedure maximums from the unit_limits
// table when a procedure entry omits them.
func (f *ClaimFile) applyUnitLimits() {
	for i := range f.Procedures {
		proc := &f.Procedures[i]
		limit, ok := f.UnitLimits[proc.Code]
		if !ok {
			continue
		}
		if proc.MaxUnits == nil {
			maxUnits := limit.MaxUnits
			proc.MaxUnits = &maxUnits
		}
		if proc.Override == "" {
			proc.Override = limit.Override
		}
	}
}

// Source builds a StaticSource over the file's conflict and limit data.
func (f *ClaimFile) Source() *StaticSource {
	return NewStaticSource(f.Conflicts, f.UnitLimits)
}
