package adjudicate

import (
	"context"
	"fmt"

	"github.com/zen-systems/claimgate/pkg/adapter"
	"github.com/zen-systems/claimgate/pkg/artifact"
)

// Logical caller names used for sticky backend assignment.
const (
	CallerCompliance = "compliance-resolver"
	CallerAncillary  = "ancillary-resolver"
)

// Executor issues one adjudication request with resilient fallback.
// Implemented by the executor package.
type Executor interface {
	Execute(ctx context.Context, caller string, req adapter.Request) (*artifact.Artifact, error)
}

// Adjudicator turns batched line-item context plus clinical text into
// typed decisions via a reasoning backend.
type Adjudicator struct {
	exec Executor
}

// New creates an adjudicator over the given executor.
func New(exec Executor) *Adjudicator {
	return &Adjudicator{exec: exec}
}

// AdjudicateCompliance issues one batched Phase 1 request and returns
// the validated decisions.
func (a *Adjudicator) AdjudicateCompliance(ctx context.Context, items []ComplianceItem, clinicalText string) ([]ComplianceDecision, error) {
	if len(items) == 0 {
		return nil, nil
	}
	req := BuildCompliancePrompt(items, clinicalText)
	art, err := a.exec.Execute(ctx, CallerCompliance, req)
	if err != nil {
		return nil, fmt.Errorf("compliance adjudication: %w", err)
	}

	var resp complianceResponse
	if err := decodeInto(art.Content, &resp); err != nil {
		return nil, fmt.Errorf("compliance adjudication: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("compliance adjudication: %w", err)
	}
	return resp.Decisions, nil
}

// AdjudicateAncillary issues one batched Phase 2 request and returns
// the validated per-line modifier lists.
func (a *Adjudicator) AdjudicateAncillary(ctx context.Context, items []AncillaryItem, clinicalText string) ([]AncillaryLine, error) {
	if len(items) == 0 {
		return nil, nil
	}
	req := BuildAncillaryPrompt(items, clinicalText)
	art, err := a.exec.Execute(ctx, CallerAncillary, req)
	if err != nil {
		return nil, fmt.Errorf("ancillary adjudication: %w", err)
	}

	var resp ancillaryResponse
	if err := decodeInto(art.Content, &resp); err != nil {
		return nil, fmt.Errorf("ancillary adjudication: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("ancillary adjudication: %w", err)
	}
	return resp.Lines, nil
}
