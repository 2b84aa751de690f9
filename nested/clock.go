// Package nested implements the nested-graph node kinds: map, reduce,
// switch, component, try_except and mesh (spec §4.6). Every kind owns
// one or more inner *graph.Graph instances and drives them from inside
// an outer node's Apply body.
package nested

import "github.com/sbl8/tsflow/tstime"

// NestedClock adapts one outer-graph eval call into the graph.Clock a
// sub-graph's EvaluateGraph needs: evaluation_time is fixed to the outer
// node's current tick, and any schedule request a sub-graph node makes is
// folded both into the caller-supplied recorder (so the owning nested
// node can track per-key next-wake-up, spec §4.6's scheduled_keys) and
// propagated to the outer graph via propagate (spec §4.6's
// "NestedEngineEvaluationClock ... propagates update_next_scheduled_evaluation_time
// up to the outer graph").
type NestedClock struct {
	now       tstime.Time
	record    func(t tstime.Time)
	propagate func(t tstime.Time) error
}

func NewNestedClock(now tstime.Time, record func(t tstime.Time), propagate func(t tstime.Time) error) *NestedClock {
	return &NestedClock{now: now, record: record, propagate: propagate}
}

func (c *NestedClock) EvaluationTime() tstime.Time { return c.now }

func (c *NestedClock) UpdateNextScheduledEvaluationTime(t tstime.Time) {
	if c.record != nil {
		c.record(t)
	}
	if c.propagate != nil {
		if err := c.propagate(t); err != nil {
			panic(err)
		}
	}
}

// Sub-graphs inside nested nodes never own push sources of their own
// (spec §4.5 restricts push sources to the top-level graph's head range),
// so the push-node hooks are no-ops.
func (c *NestedClock) PushNodeRequiresScheduling() bool { return false }
func (c *NestedClock) MarkPushNodeRequiresScheduling()  {}
func (c *NestedClock) ResetPushNodeRequiresScheduling() {}
