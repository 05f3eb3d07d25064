package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/zen-systems/claimgate/pkg/adjudicate"
	"github.com/zen-systems/claimgate/pkg/claim"
	"github.com/zen-systems/claimgate/pkg/codes"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

// Result is the engine's best-effort output. The caller decides
// whether partial results behind ProcessingErrors are acceptable.
type Result struct {
	Lines          []*claim.LineItem
	FinalModifiers map[string][]string
	Conflicts      []*codes.ConflictRecord
	Evidence       *evidence.Collector
	Errors         []*ProcessingError
}

// Engine is the claim-line compliance and modifier resolution engine:
// a stateless, in-memory transformation from procedure codes, conflict
// data, and clinical text to annotated line items. All persistence is
// the caller's concern.
type Engine struct {
	exec   adjudicate.Executor
	logger *logrus.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine over the given executor.
func New(exec adjudicate.Executor, opts ...Option) *Engine {
	e := &Engine{
		exec:   exec,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve runs the full pipeline: materialize, gate, Phase 1, Phase 2,
// assemble. Phases run sequentially; within each phase all lines are
// adjudicated in one batched call. Failures degrade the affected phase
// and are reported, never fatal.
func (e *Engine) Resolve(ctx context.Context, procs []codes.ProcedureCode, conflicts []codes.ConflictRecord, clinicalText string) *Result {
	collector := evidence.NewCollector(evidence.HashString(clinicalText))
	arena := codes.NewConflictSet(conflicts)
	adjudicator := adjudicate.New(&recordingExec{exec: e.exec, collector: collector})

	lines, errs := Materialize(procs, collector)
	set := claim.NewLineSet(lines)

	e.logger.WithFields(logrus.Fields{
		"run":       collector.Run().ID,
		"lines":     set.Len(),
		"conflicts": arena.Len(),
	}).Info("resolving claim lines")

	gated := GateLines(set.Items(), arena)
	if len(gated) > 0 {
		errs = append(errs, e.resolveCompliance(ctx, adjudicator, set, gated, arena, clinicalText, collector)...)
	}

	errs = append(errs, e.resolveAncillary(ctx, adjudicator, set, arena, clinicalText, collector)...)

	final := Assemble(set.Items(), arena, collector)

	e.logger.WithFields(logrus.Fields{
		"run":    collector.Run().ID,
		"lines":  set.Len(),
		"errors": len(errs),
	}).Info("claim resolution complete")

	return &Result{
		Lines:          set.Items(),
		FinalModifiers: final,
		Conflicts:      arena.Records(),
		Evidence:       collector,
		Errors:         errs,
	}
}
