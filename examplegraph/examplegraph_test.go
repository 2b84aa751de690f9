package examplegraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/engine"
	"github.com/sbl8/tsflow/executor"
	"github.com/sbl8/tsflow/tstime"
)

func TestBuildCounterRunsEndToEnd(t *testing.T) {
	t.Parallel()
	g, sink := BuildCounter(10)

	eng := engine.NewEvaluationEngine(g, engine.DefaultEngineOptions())
	require.NoError(t, g.ScheduleNode(0, 0, eng.Clock))

	x := executor.New(eng)
	require.NoError(t, x.Run(tstime.Time(0), tstime.Time(50)))
	require.Equal(t, int64(5), sink.LastValue())
}
