package adjudicate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/claimgate/pkg/adapter"
	"github.com/zen-systems/claimgate/pkg/artifact"
	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
)

// stubExec is a minimal Executor for adjudicator tests.
type stubExec struct {
	content string
	err     error
	callers []string
	lastReq adapter.Request
}

func (s *stubExec) Execute(_ context.Context, caller string, req adapter.Request) (*artifact.Artifact, error) {
	s.callers = append(s.callers, caller)
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return artifact.New(s.content, "stub", "stub-1"), nil
}

func gatedItem(code string, units, maxUnits int) ComplianceItem {
	proc := codes.ProcedureCode{Code: code, Units: &units, MaxUnits: &maxUnits, Override: codes.OverrideConditional}
	return ComplianceItem{Line: claim.NewLineItem(proc, 1), OverLimit: units > maxUnits}
}

func TestAdjudicateComplianceEmptyBatchSkipsCall(t *testing.T) {
	exec := &stubExec{}
	adj := New(exec)

	decisions, err := adj.AdjudicateCompliance(context.Background(), nil, "note")
	require.NoError(t, err)
	assert.Nil(t, decisions)
	assert.Empty(t, exec.callers, "no adjudication call may be issued for an empty batch")
}

func TestAdjudicateComplianceDecodesDecisions(t *testing.T) {
	exec := &stubExec{content: "```json\n" +
		`{"decisions": [{"line_id": "12345-1", "code": "12345", "edit_type": "unit_limit", "modifier": "76", "supports_override": true}]}` +
		"\n```"}
	adj := New(exec)

	decisions, err := adj.AdjudicateCompliance(context.Background(), []ComplianceItem{gatedItem("12345", 3, 1)}, "note")
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "76", decisions[0].Modifier)
	assert.Equal(t, []string{CallerCompliance}, exec.callers)
	assert.Contains(t, exec.lastReq.User, "12345")
}

func TestAdjudicateComplianceRejectsInvalidDecision(t *testing.T) {
	exec := &stubExec{content: `{"decisions": [{"line_id": "", "code": "12345", "edit_type": "unit_limit"}]}`}
	adj := New(exec)

	_, err := adj.AdjudicateCompliance(context.Background(), []ComplianceItem{gatedItem("12345", 3, 1)}, "note")
	assert.Error(t, err)
}

func TestAdjudicateCompliancePropagatesExecutorError(t *testing.T) {
	exec := &stubExec{err: errors.New("chain exhausted")}
	adj := New(exec)

	_, err := adj.AdjudicateCompliance(context.Background(), []ComplianceItem{gatedItem("12345", 3, 1)}, "note")
	assert.ErrorContains(t, err, "chain exhausted")
}

func TestAdjudicateAncillaryDecodesLines(t *testing.T) {
	exec := &stubExec{content: `{"lines": [{"line_id": "47562-1", "modifiers": [{"modifier": "80", "rationale": "assistant documented"}]}]}`}
	adj := New(exec)

	units, maxUnits := 1, 1
	proc := codes.ProcedureCode{Code: "47562", Units: &units, MaxUnits: &maxUnits, Override: codes.OverrideNever, AllowedModifiers: []string{"80"}}
	items := []AncillaryItem{{Line: claim.NewLineItem(proc, 1), PermittedModifiers: []string{"80"}}}

	lines, err := adj.AdjudicateAncillary(context.Background(), items, "note")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, []string{CallerAncillary}, exec.callers)
	assert.Equal(t, "80", lines[0].Modifiers[0].Modifier)
}

func TestBuildCompliancePromptIncludesContext(t *testing.T) {
	item := gatedItem("12345", 3, 1)
	item.Conflicts = []*codes.ConflictRecord{
		{Primary: "A", Secondary: "12345", Override: codes.OverrideConditional, Severity: codes.SeverityBlocking, AllowedModifiers: []string{"59"}},
	}

	req := BuildCompliancePrompt([]ComplianceItem{item}, "operative note text")
	assert.Contains(t, req.User, "12345")
	assert.Contains(t, req.User, "59")
	assert.Contains(t, req.User, "operative note text")
	assert.Contains(t, req.System, "supports_override")
}

func TestBuildAncillaryPromptOffersOnlyPermittedSet(t *testing.T) {
	units, maxUnits := 1, 1
	proc := codes.ProcedureCode{
		Code:             "29881",
		Units:            &units,
		MaxUnits:         &maxUnits,
		Override:         codes.OverrideNever,
		AllowedModifiers: []string{"59", "LT", "RT"},
	}
	items := []AncillaryItem{{
		Line:               claim.NewLineItem(proc, 1),
		PermittedModifiers: []string{"LT", "RT"},
	}}

	req := BuildAncillaryPrompt(items, "left knee arthroscopy")
	assert.Contains(t, req.User, "29881-1")
	assert.Contains(t, req.User, "permitted modifiers: [LT, RT]")
	assert.NotContains(t, req.User, "59")
	assert.Contains(t, req.User, "left knee arthroscopy")
	assert.Contains(t, req.System, "permitted set")
}
