package graph

import "github.com/sbl8/tsflow/tstime"

// Clock is the subset of engine.EngineEvaluationClock (spec §4.8) that
// Graph itself needs to drive scheduling: the current evaluation time,
// a way to fold a newly-installed schedule into the engine's next wake-up,
// and the push-node backpressure flag. engine.SimulationClock and
// engine.RealTimeClock both implement this.
type Clock interface {
	EvaluationTime() tstime.Time
	UpdateNextScheduledEvaluationTime(t tstime.Time)
	PushNodeRequiresScheduling() bool
	MarkPushNodeRequiresScheduling()
	ResetPushNodeRequiresScheduling()
}
