// Package graph implements the Graph type: the node-index-ordered
// schedule vector, the per-cycle evaluate_graph loop (push-node drain
// then ascending compute-node sweep), and the extend/reduce operations
// that grow or tear down a running graph (spec §4.7).
package graph

import (
	"fmt"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
)

// State mirrors node.State at the graph level: Created → Initialised →
// Started → Stopped → Disposed, each one-shot.
type State int

const (
	StateCreated State = iota
	StateInitialised
	StateStarted
	StateStopped
	StateDisposed
)

// Graph owns an ordered node list, a parallel schedule vector, and the
// push-source nodes living at its head ([0, PushSourceNodesEnd)).
// Node index ordering is the sole dispatch order within a cycle (spec §8
// property 2: ascending index, a < b ⇒ a.eval completes before b starts).
type Graph struct {
	state State

	nodes              []*node.Node
	pushNodes          []*node.PushNode // same order as nodes[0:PushSourceNodesEnd]
	PushSourceNodesEnd int

	schedule []tstime.Time

	// currentClock is the clock passed to the EvaluateGraph call presently
	// in progress; nodeOwner.OnNotify (builder.go) reads it to resolve
	// self-scheduling triggered synchronously by another node's eval.
	currentClock Clock

	// Traits is a free-form bag nested nodes and the builder use to stash
	// auxiliary per-graph state (e.g. a reduce tree's leaf assignment),
	// mirroring the teacher's loosely-typed per-engine option bags.
	Traits map[string]any

	// OnBeforeNodeEval/OnAfterNodeEval, when set, bracket every compute
	// node's Eval call during EvaluateGraph; OnBeforePushDrain/
	// OnAfterPushDrain bracket the push-node drain sweep. engine.EvaluationEngine
	// wires these to its LifecycleObserver; nil means no observer is attached.
	OnBeforeNodeEval  func(n *node.Node, t tstime.Time)
	OnAfterNodeEval   func(n *node.Node, t tstime.Time, err error)
	OnBeforePushDrain func(t tstime.Time)
	OnAfterPushDrain  func(t tstime.Time, err error)
}

// New constructs an empty, Created graph.
func New() *Graph {
	return &Graph{state: StateCreated, Traits: map[string]any{}}
}

func (g *Graph) State() State    { return g.state }
func (g *Graph) NodeCount() int  { return len(g.nodes) }
func (g *Graph) NodeAt(i int) *node.Node { return g.nodes[i] }

func (g *Graph) requireTransition(from State, context string) error {
	if g.state != from {
		return engerr.Fatal(engerr.ErrOutOfOrderLifecycle, context)
	}
	return nil
}

// Initialise calls Initialise on every node in index order.
func (g *Graph) Initialise() error {
	if err := g.requireTransition(StateCreated, "graph.initialise"); err != nil {
		return err
	}
	for i, n := range g.nodes {
		if err := n.Initialise(); err != nil {
			return fmt.Errorf("graph.initialise: node %d: %w", i, err)
		}
	}
	g.state = StateInitialised
	return nil
}

// Start calls Start on every node in index order.
func (g *Graph) Start() error {
	if err := g.requireTransition(StateInitialised, "graph.start"); err != nil {
		return err
	}
	for i, n := range g.nodes {
		if err := n.Start(); err != nil {
			return fmt.Errorf("graph.start: node %d: %w", i, err)
		}
	}
	g.state = StateStarted
	return nil
}

// Stop calls Stop on every node, continuing past failures and re-raising
// the first one after every node has been given the chance to stop
// (spec §7: "stop() of any component must continue on exception").
func (g *Graph) Stop() error {
	if err := g.requireTransition(StateStarted, "graph.stop"); err != nil {
		return err
	}
	var first error
	for _, n := range g.nodes {
		if err := n.Stop(); err != nil && first == nil {
			first = err
		}
	}
	g.state = StateStopped
	return first
}

// Dispose calls Dispose on every node. Per spec §7 dispose must not
// throw; a node's failure does not stop the loop, and all failures are
// collected and returned together.
func (g *Graph) Dispose() []error {
	if g.state != StateStopped {
		return []error{engerr.Fatal(engerr.ErrOutOfOrderLifecycle, "graph.dispose")}
	}
	var errs []error
	for _, n := range g.nodes {
		if err := n.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	g.state = StateDisposed
	return errs
}

// scheduleNode installs t as node i's next wake-up if the slot is not
// yet scheduled this cycle or t is earlier. A t later than
// evaluation_time is folded into the clock's aggregate next-scheduled
// time; a t equal to it is left to the current cycle's sweep. t before
// evaluation_time is a fatal programmer error (spec §4.7).
func (g *Graph) scheduleNode(i int, t tstime.Time, clock Clock) error {
	if t.Before(clock.EvaluationTime()) {
		return engerr.Fatal(engerr.ErrScheduleInPast, fmt.Sprintf("graph.schedule_node(%d)", i))
	}
	if g.schedule[i] == tstime.MaxDT || t.Before(g.schedule[i]) {
		g.schedule[i] = t
	}
	if clock.EvaluationTime().Before(t) {
		clock.UpdateNextScheduledEvaluationTime(t)
	}
	return nil
}

// ScheduleNode is the public entry to graph.schedule_node (spec §4.7),
// used by callers outside a running eval — e.g. the executor seeding a
// source node's first wake-up at start_time. Node bodies reach the same
// logic through their EvalContext.Schedule closure instead.
func (g *Graph) ScheduleNode(i int, t tstime.Time, clock Clock) error {
	return g.scheduleNode(i, t, clock)
}

// EvaluateGraph runs one cycle at clock.EvaluationTime(): drains push
// nodes if the clock requests it, then evaluates every compute node
// scheduled for exactly this time, in ascending index order (spec §4.9,
// §8 properties 1–2). Graph-level before/after notifications come from
// engine.EvaluationEngine; per-node and push-drain notifications go out
// through Graph's OnBefore*/OnAfter* hook fields.
func (g *Graph) EvaluateGraph(clock Clock) error {
	now := clock.EvaluationTime()
	g.currentClock = clock

	if len(g.pushNodes) > 0 && clock.PushNodeRequiresScheduling() {
		if g.OnBeforePushDrain != nil {
			g.OnBeforePushDrain(now)
		}
		g.drainPushNodes(clock)
		if g.OnAfterPushDrain != nil {
			g.OnAfterPushDrain(now, nil)
		}
	}

	for i := g.PushSourceNodesEnd; i < len(g.nodes); i++ {
		if g.schedule[i] != now {
			continue
		}
		g.schedule[i] = tstime.MaxDT
		idx := i
		ctx := &node.EvalContext{
			Now:      now,
			Schedule: func(t tstime.Time) error { return g.scheduleNode(idx, t, clock) },
		}
		if g.OnBeforeNodeEval != nil {
			g.OnBeforeNodeEval(g.nodes[i], now)
		}
		err := g.nodes[i].Eval(ctx)
		if g.OnAfterNodeEval != nil {
			g.OnAfterNodeEval(g.nodes[i], now, err)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// drainPushNodes delivers every currently queued message to each push
// node in order, FIFO within a node, stopping a node's drain loop (but
// not the others') the moment backpressure is hit (spec §4.5, §8
// property 6).
func (g *Graph) drainPushNodes(clock Clock) {
	now := clock.EvaluationTime()
	clock.ResetPushNodeRequiresScheduling()
	for i, pn := range g.pushNodes {
		idx := i
		for {
			ctx := &node.EvalContext{
				Now:      now,
				Schedule: func(t tstime.Time) error { return g.scheduleNode(idx, t, clock) },
			}
			delivered, requeued := pn.DrainOne(ctx)
			if requeued {
				clock.MarkPushNodeRequiresScheduling()
				break
			}
			if !delivered {
				break
			}
		}
	}
}

// ReduceGraph stops and disposes nodes [start, end) — the nested-node
// teardown primitive (spec §4.7). Node slots are left in place (index
// stability matters to the schedule vector); callers that also need the
// slots reclaimed must rebuild the graph via a fresh Builder.
func (g *Graph) ReduceGraph(start int) error {
	var first error
	for i := start; i < len(g.nodes); i++ {
		if err := g.nodes[i].Stop(); err != nil && first == nil {
			first = err
		}
	}
	for i := start; i < len(g.nodes); i++ {
		_ = g.nodes[i].Dispose()
	}
	return first
}
