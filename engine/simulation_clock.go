package engine

import (
	"time"

	"github.com/sbl8/tsflow/tstime"
)

// SimulationClock is the deterministic, wall-clock-free mode (spec
// §4.8): now() always equals evaluation_time, and advancing jumps
// straight to the next scheduled time with no waiting.
type SimulationClock struct {
	evaluationTime tstime.Time
	nextScheduled  tstime.Time
	pushRequires   bool
}

// NewSimulationClock starts the clock at startTime with nothing yet
// scheduled.
func NewSimulationClock(startTime tstime.Time) *SimulationClock {
	return &SimulationClock{evaluationTime: startTime, nextScheduled: tstime.MaxDT}
}

func (c *SimulationClock) EvaluationTime() tstime.Time { return c.evaluationTime }
func (c *SimulationClock) Now() time.Time              { return time.Unix(0, int64(c.evaluationTime)) }
func (c *SimulationClock) NextCycleEvaluationTime() tstime.Time { return c.nextScheduled }
func (c *SimulationClock) CycleTime() tstime.Delta     { return 0 }

func (c *SimulationClock) SetEvaluationTime(t tstime.Time) { c.evaluationTime = t }
func (c *SimulationClock) NextScheduledEvaluationTime() tstime.Time { return c.nextScheduled }

func (c *SimulationClock) UpdateNextScheduledEvaluationTime(t tstime.Time) {
	if t.Before(c.nextScheduled) {
		c.nextScheduled = t
	}
}

// AdvanceToNextScheduledTime jumps evaluation_time to the earliest
// pending schedule and resets the slot, per spec §4.8.
func (c *SimulationClock) AdvanceToNextScheduledTime() {
	c.evaluationTime = c.nextScheduled
	c.nextScheduled = tstime.MaxDT
}

func (c *SimulationClock) PushNodeRequiresScheduling() bool { return c.pushRequires }
func (c *SimulationClock) MarkPushNodeRequiresScheduling()  { c.pushRequires = true }
func (c *SimulationClock) ResetPushNodeRequiresScheduling() { c.pushRequires = false }
