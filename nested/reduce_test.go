package nested

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

func sumCombine(a, b any) any { return a.(int) + b.(int) }

func newIntDict() *tsvalue.Dict {
	return tsvalue.NewDict(typesys.Tsd(typesys.String, typesys.Ts(typesys.Int)), func(m *typesys.TSMeta) tsvalue.Value {
		return tsvalue.NewTS(m)
	})
}

func TestReduceSumsOverKeys(t *testing.T) {
	t.Parallel()
	d := newIntDict()
	r := NewReduce(node.Signature{Name: "sum"}, d, typesys.Ts(typesys.Int), 0, sumCombine)
	require.NoError(t, r.Initialise())
	require.NoError(t, r.Start())

	d.DictSet(1, "a", func(v tsvalue.Value) { v.(*tsvalue.TS).Set(1, 2) })
	d.DictSet(1, "b", func(v tsvalue.Value) { v.(*tsvalue.TS).Set(1, 3) })
	require.NoError(t, r.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	d.AfterEvaluation()

	require.True(t, r.Output().Valid())
	require.Equal(t, 5, r.Output().Value())
}

func TestReduceZeroValueWhenEmpty(t *testing.T) {
	t.Parallel()
	d := newIntDict()
	r := NewReduce(node.Signature{Name: "sum"}, d, typesys.Ts(typesys.Int), 0, sumCombine)
	require.NoError(t, r.Initialise())
	require.NoError(t, r.Start())

	require.NoError(t, r.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	d.AfterEvaluation()

	require.True(t, r.Output().Valid())
	require.Equal(t, 0, r.Output().Value())
}

func TestReduceOutputUnchangedWhenRootPointerStable(t *testing.T) {
	t.Parallel()
	d := newIntDict()
	r := NewReduce(node.Signature{Name: "sum"}, d, typesys.Ts(typesys.Int), 0, sumCombine)
	require.NoError(t, r.Initialise())
	require.NoError(t, r.Start())

	d.DictSet(1, "a", func(v tsvalue.Value) { v.(*tsvalue.TS).Set(1, 4) })
	require.NoError(t, r.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	d.AfterEvaluation()
	firstTick := r.Output().LastModifiedTime()

	require.NoError(t, r.Eval(&node.EvalContext{Now: 2, Schedule: noopSchedule}))
	d.AfterEvaluation()
	require.Equal(t, firstTick, r.Output().LastModifiedTime(), "unchanged root must not re-tick the output")
}

func TestReduceGrowsAndShrinksWithActiveCount(t *testing.T) {
	t.Parallel()
	d := newIntDict()
	r := NewReduce(node.Signature{Name: "sum"}, d, typesys.Ts(typesys.Int), 0, sumCombine)
	require.NoError(t, r.Initialise())
	require.NoError(t, r.Start())

	keys := []string{"a", "b", "c", "d", "e"}
	now := tstime.Time(1)
	for _, k := range keys {
		d.DictSet(now, k, func(v tsvalue.Value) { v.(*tsvalue.TS).Set(now, 1) })
		require.NoError(t, r.Eval(&node.EvalContext{Now: now, Schedule: noopSchedule}))
		d.AfterEvaluation()
		now++
	}
	require.GreaterOrEqual(t, r.capacity, len(keys))
	require.Equal(t, len(keys), r.Output().Value())

	for _, k := range keys[:4] {
		d.DictRemove(now, k)
		require.NoError(t, r.Eval(&node.EvalContext{Now: now, Schedule: noopSchedule}))
		d.AfterEvaluation()
		now++
	}
	require.Equal(t, 1, r.activeCount)
	require.Equal(t, 1, r.Output().Value())
}
