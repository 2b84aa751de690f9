// Package executor implements GraphExecutor: the top-level run loop that
// drives an engine.EvaluationEngine from start_time to end_time (spec
// §4.9), guaranteeing Stop on every exit path and enriching a node error
// that escapes evaluate_graph with an activation back-trace before it
// leaves the run.
package executor

import (
	"errors"
	"fmt"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/engine"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/tsvalue"
)

// GraphExecutor owns an engine.EvaluationEngine and drives its cycle
// loop between two points in evaluation time.
type GraphExecutor struct {
	Engine *engine.EvaluationEngine
}

// New wraps an already-configured engine.
func New(e *engine.EvaluationEngine) *GraphExecutor {
	return &GraphExecutor{Engine: e}
}

// Run drives cycles over the half-open interval [startTime, endTime)
// (spec §4.9/§8 property 7: "distinct scheduled times in [start_time,
// end_time)"): seed the clock, Initialise+Start, loop
// advance_to_next_scheduled_time/evaluate_graph until the schedule runs
// dry, evaluation_time would reach or pass end_time, or RequestStop is
// called, then Stop unconditionally — on any exit path, including a
// returned error. end_time <= start_time is a fatal programmer error,
// not a runtime one.
func (x *GraphExecutor) Run(startTime, endTime tstime.Time) (err error) {
	if endTime <= startTime {
		return engerr.Fatal(errors.New("engerr: executor.run requires end_time > start_time"), "executor.run")
	}

	x.Engine.Clock.SetEvaluationTime(startTime)

	if startErr := x.Engine.StartGraph(); startErr != nil {
		return fmt.Errorf("executor.run: start: %w", startErr)
	}
	defer func() {
		if stopErr := x.Engine.StopGraph(); stopErr != nil && err == nil {
			err = fmt.Errorf("executor.run: stop: %w", stopErr)
		}
	}()

	for {
		if x.Engine.StopRequested() {
			return nil
		}
		now := x.Engine.Clock.EvaluationTime()
		if now >= endTime {
			return nil
		}

		if cycleErr := x.Engine.RunCycle(); cycleErr != nil {
			return enrich(x.Engine.Graph.NodeAt, cycleErr)
		}

		next := x.Engine.Clock.NextScheduledEvaluationTime()
		if next == tstime.MaxDT || next >= endTime {
			return nil
		}
		x.Engine.Clock.AdvanceToNextScheduledTime()
	}
}

// enrich attaches an activation back-trace to a propagated NodeError
// before it leaves the run, per spec §6's activation_back_trace field.
// nodeAt is unused for now (no node identity is threaded through the
// error today) but kept so a future caller-identifying enrichment has a
// seam to extend without another signature change.
func enrich(nodeAt func(int) *node.Node, cause error) error {
	var ne *engerr.NodeError
	if errors.As(cause, &ne) && ne.ActivationBackTrace == nil {
		ne.WithBackTrace(&engerr.BackTrace{Root: &engerr.BackTraceNode{RuntimePath: ne.WiringPath}})
	}
	_ = nodeAt
	return cause
}

// RenderValue produces the truncated string form of a tsvalue.Value for
// a BackTraceArg, when the concrete kind supports it (scalar TS via its
// payload's Ops.ToString); other kinds fall back to a validity summary
// since they have no single scalar rendering.
func RenderValue(v tsvalue.Value) string {
	if ts, ok := v.(*tsvalue.TS); ok && ts.Valid() {
		if toStr := ts.Meta().Payload.Ops.ToString; toStr != nil {
			return engerr.Truncate(toStr(ts.Value()))
		}
	}
	if !v.Valid() {
		return "<invalid>"
	}
	return fmt.Sprintf("<%s>", v.Meta().Kind)
}
