package nested

import (
	"fmt"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/tsvalue"
)

// MeshPair is the pair of sub-graphs mesh instantiates per key: one
// handling the request direction, one the response direction (spec
// §4.6: "bidirectional edges between sub-graphs by key").
type MeshPair struct {
	Request  *graph.Graph
	Response *graph.Graph
}

// MeshFactory builds both directions for one key.
type MeshFactory func(key any) (MeshPair, error)

// Mesh generalises Map with per-key request/response sub-graph pairs,
// keyed the same way map is (spec §4.6). Request and response graphs
// share a scheduled_keys-style wake-up map each, evaluated independently
// so that one direction blocking on its own schedule never starves the
// other.
type Mesh struct {
	*node.Node

	keySet  *tsvalue.Set
	factory MeshFactory

	pairs          map[any]MeshPair
	scheduledReqs  map[any]tstime.Time
	scheduledResps map[any]tstime.Time

	errorOutput *tsvalue.Dict // TSD[K, NodeError], nil unless capture_exception
}

func NewMesh(sig node.Signature, keySet *tsvalue.Set, factory MeshFactory, errorOutput *tsvalue.Dict) *Mesh {
	m := &Mesh{
		keySet:         keySet,
		factory:        factory,
		pairs:          map[any]MeshPair{},
		scheduledReqs:  map[any]tstime.Time{},
		scheduledResps: map[any]tstime.Time{},
		errorOutput:    errorOutput,
	}
	sig.Flags.CaptureException = errorOutput != nil
	m.Node = node.New(sig, node.KindCompute, m.apply, []tsvalue.Value{keySet}, nil)
	return m
}

func (m *Mesh) apply(ctx *node.EvalContext) error {
	for _, k := range m.keySet.Added() {
		pair, err := m.factory(k)
		if err != nil {
			return fmt.Errorf("nested.mesh: build sub-graph pair for key %v: %w", k, err)
		}
		if err := startFresh(pair.Request); err != nil {
			return fmt.Errorf("nested.mesh: start request sub-graph for key %v: %w", k, err)
		}
		if err := startFresh(pair.Response); err != nil {
			return fmt.Errorf("nested.mesh: start response sub-graph for key %v: %w", k, err)
		}
		m.pairs[k] = pair
		m.scheduledReqs[k] = ctx.Now
		m.scheduledResps[k] = ctx.Now
	}

	for _, k := range m.keySet.Removed() {
		if pair, ok := m.pairs[k]; ok {
			_ = pair.Request.ReduceGraph(0)
			_ = pair.Response.ReduceGraph(0)
			delete(m.pairs, k)
			delete(m.scheduledReqs, k)
			delete(m.scheduledResps, k)
		}
	}

	if err := m.evaluateDirection(ctx, m.scheduledReqs, func(p MeshPair) *graph.Graph { return p.Request }); err != nil {
		return err
	}
	return m.evaluateDirection(ctx, m.scheduledResps, func(p MeshPair) *graph.Graph { return p.Response })
}

func (m *Mesh) evaluateDirection(ctx *node.EvalContext, scheduled map[any]tstime.Time, pick func(MeshPair) *graph.Graph) error {
	for k, t := range scheduled {
		if t != ctx.Now {
			continue
		}
		key := k
		delete(scheduled, key)
		nc := NewNestedClock(ctx.Now, func(next tstime.Time) { scheduled[key] = next }, ctx.Schedule)
		if err := pick(m.pairs[key]).EvaluateGraph(nc); err != nil {
			if m.errorOutput == nil {
				return err
			}
			ne := engerr.New(m.Signature().Name, m.Signature().Flags.Label, m.Signature().Flags.WiringPathName, err)
			m.errorOutput.DictSet(ctx.Now, key, func(v tsvalue.Value) { v.(*tsvalue.TS).Set(ctx.Now, ne) })
		}
	}
	return nil
}

func startFresh(g *graph.Graph) error {
	if err := g.Initialise(); err != nil {
		return err
	}
	return g.Start()
}

func (m *Mesh) ErrorOutput() *tsvalue.Dict { return m.errorOutput }
func (m *Mesh) PairCount() int             { return len(m.pairs) }
