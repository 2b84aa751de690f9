package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
)

func TestLogObserverWiredThroughEvaluationEngine(t *testing.T) {
	t.Parallel()
	g := graph.New()
	b := graph.NewBuilder()
	b.AddNode(node.New(node.Signature{Name: "failing"}, node.KindCompute, func(ctx *node.EvalContext) error {
		return errors.New("boom")
	}, nil, nil))
	_, err := g.ExtendGraph(b, true)
	require.NoError(t, err)

	obs := NewLogObserver(nil)
	e := NewEvaluationEngine(g, DefaultEngineOptions(), obs)
	require.NoError(t, e.StartGraph())
	require.NoError(t, g.ScheduleNode(0, 0, e.Clock))

	err = e.RunCycle()
	require.Error(t, err)
}
