package nested

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tsvalue"
)

func buildFailingGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	b := graph.NewBuilder()
	b.AddNode(node.New(node.Signature{Name: "boom"}, node.KindCompute, func(ctx *node.EvalContext) error {
		return errors.New("inner failure")
	}, nil, nil))
	_, err := g.ExtendGraph(b, true)
	require.NoError(t, err)
	return g
}

func TestTryExceptCapturesErrorWithoutPropagating(t *testing.T) {
	t.Parallel()
	errOut := tsvalue.NewTS(node.ErrorOutputMeta)
	te := NewTryExcept(node.Signature{Name: "guarded"}, buildFailingGraph(t), errOut)
	require.NoError(t, te.Initialise())
	require.NoError(t, te.Start())

	err := te.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule})
	require.NoError(t, err, "try_except must not propagate a handled inner error")
	require.True(t, errOut.Valid())
	ne := errOut.Value().(*engerr.NodeError)
	require.Contains(t, ne.Error(), "inner failure")
}

func TestTryExceptRunsInnerGraphOnlyOnce(t *testing.T) {
	t.Parallel()
	evals := 0
	g := graph.New()
	b := graph.NewBuilder()
	b.AddNode(node.New(node.Signature{Name: "counter"}, node.KindCompute, func(ctx *node.EvalContext) error {
		evals++
		return nil
	}, nil, nil))
	_, err := g.ExtendGraph(b, true)
	require.NoError(t, err)

	errOut := tsvalue.NewTS(node.ErrorOutputMeta)
	te := NewTryExcept(node.Signature{Name: "guarded"}, g, errOut)
	require.NoError(t, te.Initialise())
	require.NoError(t, te.Start())

	require.NoError(t, te.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	require.Equal(t, 1, evals)
	require.False(t, errOut.Valid())
}
