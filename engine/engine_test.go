package engine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
)

func counterGraph(t *testing.T, calls *int) *graph.Graph {
	t.Helper()
	g := graph.New()
	b := graph.NewBuilder()
	b.AddNode(node.New(node.Signature{Name: "count"}, node.KindCompute, func(ctx *node.EvalContext) error {
		*calls++
		return nil
	}, nil, nil))
	_, err := g.ExtendGraph(b, true)
	require.NoError(t, err)
	return g
}

func TestEvaluationEngineRunsCyclesAndTracksStats(t *testing.T) {
	t.Parallel()
	var calls int
	g := counterGraph(t, &calls)
	e := NewEvaluationEngine(g, DefaultEngineOptions())
	require.NoError(t, e.StartGraph())

	require.NoError(t, g.ScheduleNode(0, 0, e.Clock))
	require.NoError(t, e.RunCycle())
	require.Equal(t, 1, calls)

	stats := e.Stats()
	require.Equal(t, int64(1), stats.TotalCycles)
}

func TestEvaluationEngineStopRequestFlag(t *testing.T) {
	t.Parallel()
	var calls int
	g := counterGraph(t, &calls)
	e := NewEvaluationEngine(g, DefaultEngineOptions())
	require.False(t, e.StopRequested())
	e.RequestStop()
	require.True(t, e.StopRequested())
}

type recordingObserver struct {
	NopObserver
	nodeEvals int
}

func (r *recordingObserver) BeforeNodeEvaluation(*node.Node, tstime.Time) { r.nodeEvals++ }

func TestEvaluationEngineNotifiesObservers(t *testing.T) {
	t.Parallel()
	var calls int
	g := counterGraph(t, &calls)
	obs := &recordingObserver{}
	e := NewEvaluationEngine(g, DefaultEngineOptions(), obs)
	require.NoError(t, e.StartGraph())

	require.NoError(t, g.ScheduleNode(0, 0, e.Clock))
	require.NoError(t, e.RunCycle())
	require.Equal(t, 1, obs.nodeEvals)
}

func TestMetricsObserverRecordsCycleAndNodeCounts(t *testing.T) {
	t.Parallel()
	var calls int
	g := counterGraph(t, &calls)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := NewEvaluationEngine(g, DefaultEngineOptions(), m)
	require.NoError(t, e.StartGraph())

	require.NoError(t, g.ScheduleNode(0, 0, e.Clock))
	require.NoError(t, e.RunCycle())

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metricFamilies)
}
