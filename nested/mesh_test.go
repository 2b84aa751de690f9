package nested

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

func directionGraph(t *testing.T, counts map[any]int, label string, fail bool) *graph.Graph {
	t.Helper()
	g := graph.New()
	b := graph.NewBuilder()
	b.AddNode(node.New(node.Signature{Name: label}, node.KindCompute, func(ctx *node.EvalContext) error {
		counts[label]++
		if fail {
			return errors.New("boom")
		}
		return nil
	}, nil, nil))
	_, err := g.ExtendGraph(b, true)
	require.NoError(t, err)
	return g
}

func TestMeshBuildsRequestAndResponsePerKey(t *testing.T) {
	t.Parallel()
	keySet := tsvalue.NewSet(typesys.Tss(typesys.Ts(typesys.String)))
	counts := map[any]int{}
	factory := func(key any) (MeshPair, error) {
		return MeshPair{
			Request:  directionGraph(t, counts, "req:"+key.(string), false),
			Response: directionGraph(t, counts, "resp:"+key.(string), false),
		}, nil
	}
	m := NewMesh(node.Signature{Name: "mesh"}, keySet, factory, nil)
	require.NoError(t, m.Initialise())
	require.NoError(t, m.Start())

	keySet.Add(1, "a")
	require.NoError(t, m.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	keySet.AfterEvaluation()

	require.Equal(t, 1, m.PairCount())
	require.Equal(t, 1, counts["req:a"])
	require.Equal(t, 1, counts["resp:a"])
}

func TestMeshRoutesDirectionErrorToErrorOutput(t *testing.T) {
	t.Parallel()
	keySet := tsvalue.NewSet(typesys.Tss(typesys.Ts(typesys.String)))
	counts := map[any]int{}
	errOut := NewMapErrorOutput(typesys.String)
	factory := func(key any) (MeshPair, error) {
		return MeshPair{
			Request:  directionGraph(t, counts, "req:"+key.(string), true),
			Response: directionGraph(t, counts, "resp:"+key.(string), false),
		}, nil
	}
	m := NewMesh(node.Signature{Name: "mesh"}, keySet, factory, errOut)
	require.NoError(t, m.Initialise())
	require.NoError(t, m.Start())

	keySet.Add(1, "a")
	require.NoError(t, m.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	keySet.AfterEvaluation()

	child, ok := errOut.Get("a")
	require.True(t, ok)
	require.True(t, child.(*tsvalue.TS).Valid())
}

func TestMeshTearsDownBothDirectionsOnKeyRemove(t *testing.T) {
	t.Parallel()
	keySet := tsvalue.NewSet(typesys.Tss(typesys.Ts(typesys.String)))
	counts := map[any]int{}
	factory := func(key any) (MeshPair, error) {
		return MeshPair{
			Request:  directionGraph(t, counts, "req:"+key.(string), false),
			Response: directionGraph(t, counts, "resp:"+key.(string), false),
		}, nil
	}
	m := NewMesh(node.Signature{Name: "mesh"}, keySet, factory, nil)
	require.NoError(t, m.Initialise())
	require.NoError(t, m.Start())

	keySet.Add(1, "a")
	require.NoError(t, m.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	keySet.AfterEvaluation()
	require.Equal(t, 1, m.PairCount())

	keySet.Remove(2, "a")
	require.NoError(t, m.Eval(&node.EvalContext{Now: 2, Schedule: noopSchedule}))
	keySet.AfterEvaluation()
	require.Equal(t, 0, m.PairCount())
}
