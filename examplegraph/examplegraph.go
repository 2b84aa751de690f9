// Package examplegraph builds small demonstration graphs used by
// cmd/tsflowrun and cmd/tsflowctl. It exists purely for the CLI entry
// points: nothing in engine/graph/node/tsvalue depends on it.
package examplegraph

import (
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

// CounterSink exposes the last value the demo counter's sink node
// observed.
type CounterSink struct {
	last int64
}

func (s *CounterSink) LastValue() int64 { return s.last }

// BuildCounter returns a two-node graph: a self-rescheduling source that
// increments a TS[int] output every period nanoseconds, and a sink node
// that records the latest value into the returned CounterSink. The
// graph is extended but not initialised/started — callers (the CLI
// entry points) own its lifecycle via engine.EvaluationEngine.
func BuildCounter(period int64) (*graph.Graph, *CounterSink) {
	g := graph.New()
	b := graph.NewBuilder()

	counter := tsvalue.NewTS(typesys.Ts(typesys.Int))
	sink := &CounterSink{}

	var value int64
	source := node.New(node.Signature{Name: "counter_source"}, node.KindCompute, func(ctx *node.EvalContext) error {
		value++
		counter.Set(ctx.Now, value)
		return ctx.Schedule(ctx.Now.Add(tstime.Delta(period)))
	}, nil, []tsvalue.Value{counter})
	b.AddNode(source)

	observer := node.New(node.Signature{Name: "counter_sink"}, node.KindCompute, func(ctx *node.EvalContext) error {
		if counter.Valid() {
			sink.last = counter.Value().(int64)
		}
		return nil
	}, []tsvalue.Value{counter}, nil)
	b.AddNode(observer)

	indices, err := g.ExtendGraph(b, true)
	if err != nil {
		panic(err)
	}
	if _, err := g.Bind(indices[1], counter, counter); err != nil {
		panic(err)
	}
	return g, sink
}
