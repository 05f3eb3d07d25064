package engine

import (
	"context"
	"time"

	"github.com/zen-systems/claimgate/pkg/adapter"
	"github.com/zen-systems/claimgate/pkg/adjudicate"
	"github.com/zen-systems/claimgate/pkg/artifact"
	"github.com/zen-systems/claimgate/pkg/evidence"
)

// recordingExec wraps the shared executor for one run so every
// adjudication call lands in the run's evidence collector.
type recordingExec struct {
	exec      adjudicate.Executor
	collector *evidence.Collector
}

func (r *recordingExec) Execute(ctx context.Context, caller string, req adapter.Request) (*artifact.Artifact, error) {
	start := time.Now()
	art, err := r.exec.Execute(ctx, caller, req)

	record := evidence.CallRecord{
		Caller:         caller,
		Prompt:         req.User,
		DurationMillis: time.Since(start).Milliseconds(),
	}
	if err != nil {
		record.Failed = true
		record.Error = err.Error()
	} else {
		record.Backend = art.Backend
		record.Model = art.Model
		record.Output = art.Content
	}
	r.collector.RecordCall(record)

	return art, err
}
