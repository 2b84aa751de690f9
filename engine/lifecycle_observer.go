package engine

import (
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
)

// LifecycleObserver receives before/after notifications around every
// phase of graph and node execution (spec §6): graph start/stop, node
// start/stop, a full graph evaluation cycle, a single node's evaluation
// within that cycle, and the push-nodes sweep. Implementations that only
// care about some phases should embed NopObserver and override the rest.
// EvaluationEngine calls the graph start/stop, graph evaluation, node
// evaluation and push-sweep hooks; it never calls BeforeStartNode,
// AfterStartNode, BeforeStopNode or AfterStopNode, so those four fire
// only when some other caller invokes them.
type LifecycleObserver interface {
	BeforeStartGraph(g *graph.Graph)
	AfterStartGraph(g *graph.Graph, err error)

	BeforeStartNode(n *node.Node)
	AfterStartNode(n *node.Node, err error)

	BeforeGraphEvaluation(g *graph.Graph, t tstime.Time)
	AfterGraphEvaluation(g *graph.Graph, t tstime.Time, err error)

	BeforeNodeEvaluation(n *node.Node, t tstime.Time)
	AfterNodeEvaluation(n *node.Node, t tstime.Time, err error)

	BeforePushNodesEvaluation(g *graph.Graph, t tstime.Time)
	AfterPushNodesEvaluation(g *graph.Graph, t tstime.Time, err error)

	BeforeStopNode(n *node.Node)
	AfterStopNode(n *node.Node, err error)

	BeforeStopGraph(g *graph.Graph)
	AfterStopGraph(g *graph.Graph, err error)
}

// NopObserver implements LifecycleObserver with every hook a no-op.
// Embed it in an observer that only wants to override a handful of
// phases.
type NopObserver struct{}

func (NopObserver) BeforeStartGraph(*graph.Graph)          {}
func (NopObserver) AfterStartGraph(*graph.Graph, error)    {}
func (NopObserver) BeforeStartNode(*node.Node)             {}
func (NopObserver) AfterStartNode(*node.Node, error)       {}

func (NopObserver) BeforeGraphEvaluation(*graph.Graph, tstime.Time)        {}
func (NopObserver) AfterGraphEvaluation(*graph.Graph, tstime.Time, error)  {}
func (NopObserver) BeforeNodeEvaluation(*node.Node, tstime.Time)           {}
func (NopObserver) AfterNodeEvaluation(*node.Node, tstime.Time, error)     {}
func (NopObserver) BeforePushNodesEvaluation(*graph.Graph, tstime.Time)       {}
func (NopObserver) AfterPushNodesEvaluation(*graph.Graph, tstime.Time, error) {}

func (NopObserver) BeforeStopNode(*node.Node)          {}
func (NopObserver) AfterStopNode(*node.Node, error)    {}
func (NopObserver) BeforeStopGraph(*graph.Graph)       {}
func (NopObserver) AfterStopGraph(*graph.Graph, error) {}

// multiObserver fans a single notification out to every registered
// observer in order; used by EvaluationEngine to support more than one
// LifecycleObserver at once.
type multiObserver struct {
	observers []LifecycleObserver
}

func (m *multiObserver) BeforeStartGraph(g *graph.Graph) {
	for _, o := range m.observers {
		o.BeforeStartGraph(g)
	}
}

func (m *multiObserver) AfterStartGraph(g *graph.Graph, err error) {
	for _, o := range m.observers {
		o.AfterStartGraph(g, err)
	}
}

func (m *multiObserver) BeforeStartNode(n *node.Node) {
	for _, o := range m.observers {
		o.BeforeStartNode(n)
	}
}

func (m *multiObserver) AfterStartNode(n *node.Node, err error) {
	for _, o := range m.observers {
		o.AfterStartNode(n, err)
	}
}

func (m *multiObserver) BeforeGraphEvaluation(g *graph.Graph, t tstime.Time) {
	for _, o := range m.observers {
		o.BeforeGraphEvaluation(g, t)
	}
}

func (m *multiObserver) AfterGraphEvaluation(g *graph.Graph, t tstime.Time, err error) {
	for _, o := range m.observers {
		o.AfterGraphEvaluation(g, t, err)
	}
}

func (m *multiObserver) BeforeNodeEvaluation(n *node.Node, t tstime.Time) {
	for _, o := range m.observers {
		o.BeforeNodeEvaluation(n, t)
	}
}

func (m *multiObserver) AfterNodeEvaluation(n *node.Node, t tstime.Time, err error) {
	for _, o := range m.observers {
		o.AfterNodeEvaluation(n, t, err)
	}
}

func (m *multiObserver) BeforePushNodesEvaluation(g *graph.Graph, t tstime.Time) {
	for _, o := range m.observers {
		o.BeforePushNodesEvaluation(g, t)
	}
}

func (m *multiObserver) AfterPushNodesEvaluation(g *graph.Graph, t tstime.Time, err error) {
	for _, o := range m.observers {
		o.AfterPushNodesEvaluation(g, t, err)
	}
}

func (m *multiObserver) BeforeStopNode(n *node.Node) {
	for _, o := range m.observers {
		o.BeforeStopNode(n)
	}
}

func (m *multiObserver) AfterStopNode(n *node.Node, err error) {
	for _, o := range m.observers {
		o.AfterStopNode(n, err)
	}
}

func (m *multiObserver) BeforeStopGraph(g *graph.Graph) {
	for _, o := range m.observers {
		o.BeforeStopGraph(g)
	}
}

func (m *multiObserver) AfterStopGraph(g *graph.Graph, err error) {
	for _, o := range m.observers {
		o.AfterStopGraph(g, err)
	}
}
