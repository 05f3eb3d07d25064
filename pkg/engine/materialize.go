package engine

import (
	"fmt"

	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

// Materialize converts accepted procedure codes into line items with
// empty modifier lists. A code missing its unit count, unit limit, or
// override indicator is skipped and reported; the batch continues.
// Emits one audit record per created line.
func Materialize(procs []codes.ProcedureCode, collector *evidence.Collector) ([]*claim.LineItem, []*ProcessingError) {
	var lines []*claim.LineItem
	var errs []*ProcessingError
	ordinals := make(map[string]int)

	for _, proc := range procs {
		if err := proc.Validate(); err != nil {
			errs = append(errs, validationError(err.Error(), map[string]string{"code": proc.Code}))
			continue
		}
		ordinals[proc.Code]++
		line := claim.NewLineItem(proc, ordinals[proc.Code])
		lines = append(lines, line)
		collector.Record(evidence.KindLineCreated, line.ID, proc.Code,
			fmt.Sprintf("materialized line %s with %d unit(s)", line.ID, line.Units), nil)
	}

	collector.SetLineCount(len(lines))
	return lines, errs
}
