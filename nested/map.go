package nested

import (
	"fmt"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

// SubGraphFactory builds and wires the sub-graph instantiated for one key.
// multiplexed holds, per declared multiplexed arg name, that key's own
// slice of the backing TSD (grounded on tsd_map_node.cpp's
// multiplexed_args/wire_graph, which re-parents a per-key TSD input into
// the nested graph); broadcast holds the same shared Value for every key
// (the non-multiplexed ref-bound args in wire_graph). Returning an
// unstarted (Created) graph is fine — Map initialises and starts it
// itself.
type SubGraphFactory func(key any, multiplexed map[string]tsvalue.Value, broadcast map[string]tsvalue.Value) (*graph.Graph, error)

// Map is the map(key → sub-graph) nested node (spec §4.6): one sub-graph
// per live member of keySet, torn down on removal, evaluated on whichever
// cycles its own NestedClock records a wake-up for, a multiplexed input
// key ticks, or a broadcast input ticks.
type Map struct {
	*node.Node

	keySet      *tsvalue.Set
	multiplexed map[string]*tsvalue.Dict // arg name -> TSD[K,V] source; each key gets its own slice
	broadcast   map[string]tsvalue.Value // arg name -> value shared, unmodified, across every key
	factory     SubGraphFactory

	subGraphs     map[any]*graph.Graph
	scheduledKeys map[any]tstime.Time

	errorOutput *tsvalue.Dict // TSD[K, NodeError], nil unless capture_exception
}

// NewMap constructs a map node. multiplexed/broadcast may be nil when the
// sub-graph needs no per-key or shared inputs beyond the key itself.
// errorOutput, if non-nil, must be a Dict over node.ErrorOutputPayload-valued
// children (see NewMapErrorOutput).
func NewMap(sig node.Signature, keySet *tsvalue.Set, multiplexed map[string]*tsvalue.Dict, broadcast map[string]tsvalue.Value, factory SubGraphFactory, errorOutput *tsvalue.Dict) *Map {
	m := &Map{
		keySet:        keySet,
		multiplexed:   multiplexed,
		broadcast:     broadcast,
		factory:       factory,
		subGraphs:     map[any]*graph.Graph{},
		scheduledKeys: map[any]tstime.Time{},
		errorOutput:   errorOutput,
	}
	sig.Flags.CaptureException = errorOutput != nil

	inputs := []tsvalue.Value{keySet}
	for _, d := range multiplexed {
		inputs = append(inputs, d)
	}
	for _, v := range broadcast {
		inputs = append(inputs, v)
	}
	m.Node = node.New(sig, node.KindCompute, m.apply, inputs, nil)
	return m
}

// NewMapErrorOutput allocates a TSD[keyMeta, NodeError] suitable as a
// map/mesh error_output (spec §4.6).
func NewMapErrorOutput(keyMeta *typesys.TypeMeta) *tsvalue.Dict {
	return tsvalue.NewDict(typesys.Tsd(keyMeta, node.ErrorOutputMeta), func(m *typesys.TSMeta) tsvalue.Value {
		return tsvalue.NewTS(m)
	})
}

func (m *Map) apply(ctx *node.EvalContext) error {
	for _, k := range m.keySet.Added() {
		g, err := m.buildSubGraph(ctx.Now, k)
		if err != nil {
			return err
		}
		m.subGraphs[k] = g
		m.scheduledKeys[k] = ctx.Now
	}

	for _, k := range m.keySet.Removed() {
		if g, ok := m.subGraphs[k]; ok {
			_ = g.ReduceGraph(0)
			delete(m.subGraphs, k)
			delete(m.scheduledKeys, k)
			for _, d := range m.multiplexed {
				d.DictRemove(ctx.Now, k)
			}
		}
	}

	// A multiplexed per-key value ticking re-activates that key's
	// sub-graph this cycle (the Go analogue of wire_graph's direct re-parent
	// of the per-key TSD slice into the nested graph).
	for _, d := range m.multiplexed {
		for _, k := range d.Updated() {
			if _, live := m.subGraphs[k]; live {
				m.scheduledKeys[k] = ctx.Now
			}
		}
	}

	// A broadcast input ticking re-activates every live sub-graph.
	for _, v := range m.broadcast {
		if v.Modified(ctx.Now) {
			for k := range m.subGraphs {
				m.scheduledKeys[k] = ctx.Now
			}
			break
		}
	}

	for k, t := range m.scheduledKeys {
		if t != ctx.Now {
			continue
		}
		key := k
		delete(m.scheduledKeys, key)
		nc := NewNestedClock(ctx.Now, func(next tstime.Time) { m.scheduledKeys[key] = next }, ctx.Schedule)
		if err := m.subGraphs[key].EvaluateGraph(nc); err != nil {
			if m.errorOutput == nil {
				return err
			}
			ne := engerr.New(m.Signature().Name, m.Signature().Flags.Label, m.Signature().Flags.WiringPathName, err)
			m.errorOutput.DictSet(ctx.Now, key, func(v tsvalue.Value) { v.(*tsvalue.TS).Set(ctx.Now, ne) })
		}
	}
	return nil
}

// buildSubGraph assembles this key's multiplexed-arg slices, hands them
// plus the shared broadcast args to factory, and brings the result up to
// Started.
func (m *Map) buildSubGraph(now tstime.Time, key any) (*graph.Graph, error) {
	multiplexedArgs := make(map[string]tsvalue.Value, len(m.multiplexed))
	for name, d := range m.multiplexed {
		multiplexedArgs[name] = d.DictCreate(now, key)
	}

	g, err := m.factory(key, multiplexedArgs, m.broadcast)
	if err != nil {
		return nil, fmt.Errorf("nested.map: build sub-graph for key %v: %w", key, err)
	}
	if err := g.Initialise(); err != nil {
		return nil, fmt.Errorf("nested.map: initialise sub-graph for key %v: %w", key, err)
	}
	if err := g.Start(); err != nil {
		return nil, fmt.Errorf("nested.map: start sub-graph for key %v: %w", key, err)
	}
	return g, nil
}

func (m *Map) ErrorOutput() *tsvalue.Dict { return m.errorOutput }
func (m *Map) SubGraphCount() int         { return len(m.subGraphs) }
