package nested

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

func TestSwitchRebuildsOnKeyChange(t *testing.T) {
	t.Parallel()
	keyInput := tsvalue.NewTS(typesys.Ts(typesys.String))
	counts := map[any]int{}
	sw := NewSwitch(node.Signature{Name: "sw"}, keyInput, keyedSubGraph(t, counts, nil), nil)
	require.NoError(t, sw.Initialise())
	require.NoError(t, sw.Start())

	keyInput.Set(1, "a")
	require.NoError(t, sw.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	require.Equal(t, 1, counts["a"])
	active, ok := sw.ActiveKey()
	require.True(t, ok)
	require.Equal(t, "a", active)

	keyInput.Set(2, "b")
	require.NoError(t, sw.Eval(&node.EvalContext{Now: 2, Schedule: noopSchedule}))
	require.Equal(t, 1, counts["b"])
	active, _ = sw.ActiveKey()
	require.Equal(t, "b", active)
}

func TestSwitchStaysOnSameSubGraphWhenKeyUnchanged(t *testing.T) {
	t.Parallel()
	keyInput := tsvalue.NewTS(typesys.Ts(typesys.String))
	counts := map[any]int{}
	sw := NewSwitch(node.Signature{Name: "sw"}, keyInput, keyedSubGraph(t, counts, nil), nil)
	require.NoError(t, sw.Initialise())
	require.NoError(t, sw.Start())

	keyInput.Set(1, "a")
	require.NoError(t, sw.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	first := sw.sub

	require.NoError(t, sw.Eval(&node.EvalContext{Now: 2, Schedule: noopSchedule}))
	require.Same(t, first, sw.sub)
}

func TestSwitchCapturesSubGraphError(t *testing.T) {
	t.Parallel()
	keyInput := tsvalue.NewTS(typesys.Ts(typesys.String))
	counts := map[any]int{}
	fail := map[any]bool{"a": true}
	errOut := tsvalue.NewTS(node.ErrorOutputMeta)
	sw := NewSwitch(node.Signature{Name: "sw"}, keyInput, keyedSubGraph(t, counts, fail), errOut)
	require.NoError(t, sw.Initialise())
	require.NoError(t, sw.Start())

	keyInput.Set(1, "a")
	require.NoError(t, sw.Eval(&node.EvalContext{Now: 1, Schedule: noopSchedule}))
	require.True(t, errOut.Valid())
}
