package engine

import (
	"fmt"

	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

// Assemble concatenates each line's compliance-phase and
// ancillary-phase modifiers into the final per-line set and emits the
// run summary record. Pure beyond the evidence side effect.
func Assemble(lines []*claim.LineItem, arena *codes.ConflictSet, collector *evidence.Collector) map[string][]string {
	final := make(map[string][]string, len(lines))
	total := 0
	for _, line := range lines {
		mods := line.Modifiers()
		final[line.ID] = mods
		total += len(mods)
	}

	resolved := arena.ResolvedCount()
	collector.Record(evidence.KindSummary, "", "",
		fmt.Sprintf("assigned %d modifier(s) across %d line(s); resolved %d conflict(s)", total, len(lines), resolved),
		map[string]string{
			"modifiers_assigned": fmt.Sprintf("%d", total),
			"conflicts_resolved": fmt.Sprintf("%d", resolved),
		})

	return final
}
