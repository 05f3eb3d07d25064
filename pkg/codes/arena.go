package codes

import "sort"

// ConflictSet is the run-owned arena of conflict records, keyed by the
// (primary, secondary) pair. Records are shared pointers: the severity
// downgrade performed during resolution is visible to every holder of
// the set. Single-writer invariant: only one resolver per run may
// mutate record severities.
type ConflictSet struct {
	records map[pairKey]*ConflictRecord
	order   []pairKey
}

type pairKey struct {
	primary   string
	secondary string
}

// NewConflictSet builds an arena from caller-supplied records. The
// records are copied so the caller's slice stays untouched; later pairs
// with a duplicate key win, matching last-record-wins lookup semantics.
func NewConflictSet(records []ConflictRecord) *ConflictSet {
	set := &ConflictSet{records: make(map[pairKey]*ConflictRecord, len(records))}
	for i := range records {
		rec := records[i]
		key := pairKey{primary: rec.Primary, secondary: rec.Secondary}
		if _, seen := set.records[key]; !seen {
			set.order = append(set.order, key)
		}
		set.records[key] = &rec
	}
	return set
}

// Len returns the number of distinct conflict pairs.
func (s *ConflictSet) Len() int {
	return len(s.records)
}

// Involving returns every record in which code appears as primary or
// secondary, in insertion order.
func (s *ConflictSet) Involving(code string) []*ConflictRecord {
	var out []*ConflictRecord
	for _, key := range s.order {
		if key.primary == code || key.secondary == code {
			out = append(out, s.records[key])
		}
	}
	return out
}

// SecondaryTo returns every record whose secondary code equals code.
func (s *ConflictSet) SecondaryTo(code string) []*ConflictRecord {
	var out []*ConflictRecord
	for _, key := range s.order {
		if key.secondary == code {
			out = append(out, s.records[key])
		}
	}
	return out
}

// Records returns all records in insertion order.
func (s *ConflictSet) Records() []*ConflictRecord {
	out := make([]*ConflictRecord, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}

// Resolve downgrades the record for (primary, secondary) from blocking
// to informational. The downgrade is monotonic: an already-resolved
// record is left as is. Returns the record and whether a downgrade
// happened.
func (s *ConflictSet) Resolve(primary, secondary string) (*ConflictRecord, bool) {
	rec, ok := s.records[pairKey{primary: primary, secondary: secondary}]
	if !ok {
		return nil, false
	}
	if rec.Severity != SeverityBlocking {
		return rec, false
	}
	rec.Severity = SeverityInfo
	return rec, true
}

// ResolvedCount returns how many records carry informational severity.
func (s *ConflictSet) ResolvedCount() int {
	n := 0
	for _, rec := range s.records {
		if rec.Severity == SeverityInfo {
			n++
		}
	}
	return n
}

// ReservedModifiers returns the union of modifiers named by any record
// in the set, sorted. Phase 2 excludes these from the ancillary subset.
func (s *ConflictSet) ReservedModifiers() []string {
	seen := make(map[string]bool)
	for _, rec := range s.records {
		for _, m := range rec.AllowedModifiers {
			seen[m] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
