// Package engine implements the evaluation engine: the two clock modes
// (simulation, real-time), life-cycle notifications around graph/node
// start/stop/eval, and the metrics an EvaluationEngine exposes over
// prometheus (spec §4.8, §6).
package engine

import (
	"time"

	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/tstime"
)

// EvaluationClock is the read-only surface spec §4.8 names:
// evaluation_time, wall now, the next cycle's candidate evaluation time,
// and the configured cycle duration (real-time mode only — simulation
// clocks report zero).
type EvaluationClock interface {
	EvaluationTime() tstime.Time
	Now() time.Time
	NextCycleEvaluationTime() tstime.Time
	CycleTime() tstime.Delta
}

// EngineEvaluationClock adds the mutators executor.Run drives the cycle
// loop with. It embeds graph.Clock so any EngineEvaluationClock is
// usable directly as the Clock argument to graph.Graph.EvaluateGraph.
type EngineEvaluationClock interface {
	graph.Clock
	EvaluationClock

	SetEvaluationTime(t tstime.Time)
	NextScheduledEvaluationTime() tstime.Time
	// AdvanceToNextScheduledTime moves evaluation_time to the earliest
	// pending schedule, however that mode determines "earliest" (an
	// instant jump for simulation, a wait for real time).
	AdvanceToNextScheduledTime()
}
