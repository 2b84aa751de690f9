package graph

import (
	"fmt"

	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
)

// nodeOwner adapts a (Graph, node index) pair to tsvalue.Observer: when a
// bound input ticks, the owning node schedules itself for immediate
// re-evaluation this cycle — the self-scheduling half of
// graph.schedule_node(self, evaluation_time) implied by spec §4.5's
// "evaluates only the nodes whose inputs have changed".
//
// OnNotify cannot return an error (tsvalue.Observer's signature doesn't
// allow it), so a scheduling failure here — which can only be
// schedule-in-the-past, and only ever fires with t == evaluation_time —
// is a genuine programmer error and panics rather than being silently
// dropped, consistent with spec §7 treating it as fatal/uncatchable.
type nodeOwner struct {
	g   *Graph
	idx int
}

func (o nodeOwner) OnNotify(t tstime.Time) {
	if err := o.g.scheduleNode(o.idx, t, o.g.currentClock); err != nil {
		panic(err)
	}
}

// Builder programmatically assembles nodes for one ExtendGraph batch.
// This is the "minimal programmatic GraphBuilder, not a parser" carved
// out in SPEC_FULL.md's Non-goals: wiring DSL / type-inference front ends
// stay out of scope, but imperative construction does not.
type Builder struct {
	pushNodes    []*node.PushNode
	computeNodes []*node.Node
}

func NewBuilder() *Builder { return &Builder{} }

// AddNode appends a compute/sink/source node to this batch.
func (b *Builder) AddNode(n *node.Node) { b.computeNodes = append(b.computeNodes, n) }

// AddPushNode appends a push-source node. All of a graph's push nodes
// must arrive in its first ExtendGraph batch (spec §4.5: push nodes
// occupy the fixed index range [0, push_source_nodes_end)).
func (b *Builder) AddPushNode(pn *node.PushNode) { b.pushNodes = append(b.pushNodes, pn) }

// Footprint is a worst-case capacity estimate for a batch, computed
// before ExtendGraph actually appends anything — the arena-style growth
// planning SPEC_FULL.md's Design Notes call for (adapted from the
// teacher's runtime.Arena region-sizing, here sizing node-slot and
// schedule-vector growth instead of byte regions).
type Footprint struct {
	PushNodes    int
	ComputeNodes int
	ScheduleSlots int
}

func (b *Builder) Footprint() Footprint {
	total := len(b.pushNodes) + len(b.computeNodes)
	return Footprint{PushNodes: len(b.pushNodes), ComputeNodes: len(b.computeNodes), ScheduleSlots: total}
}

// ExtendGraph appends a batch's nodes, initialises them unless the graph
// is still Created (then the graph's own Initialise/Start carry them),
// and starts them unless the graph isn't started yet or delayStart is set
// (spec §4.7).
// Returns the absolute index assigned to each appended node, in the same
// push-then-compute order the batch was recorded in — callers use these
// to call Graph.Bind.
func (g *Graph) ExtendGraph(b *Builder, delayStart bool) ([]int, error) {
	if len(b.pushNodes) > 0 && len(g.nodes) > 0 {
		return nil, fmt.Errorf("graph.extend_graph: push-source nodes must be part of the graph's initial batch")
	}

	base := len(g.nodes)
	all := make([]*node.Node, 0, len(b.pushNodes)+len(b.computeNodes))
	for _, pn := range b.pushNodes {
		all = append(all, pn.Node)
	}
	all = append(all, b.computeNodes...)

	if len(b.pushNodes) > 0 {
		g.PushSourceNodesEnd = len(b.pushNodes)
	}
	g.nodes = append(g.nodes, all...)
	g.pushNodes = append(g.pushNodes, b.pushNodes...)
	for range all {
		g.schedule = append(g.schedule, tstime.MaxDT)
	}

	indices := make([]int, len(all))
	for i := range all {
		indices[i] = base + i
	}

	// A batch appended while the graph is still Created is left at
	// node.StateCreated: the graph's own subsequent Initialise()/Start()
	// calls will carry these nodes along with the rest, exactly once.
	// A batch appended after the graph has already passed its own
	// Initialise/Start (dynamic growth, e.g. nested/map.go spawning a
	// sub-graph at an already-running parent) won't see those top-level
	// calls again, so ExtendGraph must initialise the new nodes itself.
	if g.state != StateCreated {
		for i, n := range all {
			idx := base + i
			if err := n.Initialise(); err != nil {
				return nil, fmt.Errorf("graph.extend_graph: node %d: %w", idx, err)
			}
		}
	}

	if g.state == StateStarted && !delayStart {
		for i, n := range all {
			idx := base + i
			if err := n.Start(); err != nil {
				return nil, fmt.Errorf("graph.extend_graph: node %d: %w", idx, err)
			}
		}
	}
	return indices, nil
}
