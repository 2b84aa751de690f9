package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/engerr"
)

func sig(captureException bool) Signature {
	return Signature{Name: "adder", Flags: Flags{CaptureException: captureException, Label: "add1"}}
}

func TestNodeLifecycleOrder(t *testing.T) {
	t.Parallel()
	n := New(sig(false), KindCompute, func(ctx *EvalContext) error { return nil }, nil, nil)

	require.NoError(t, n.Initialise())
	require.NoError(t, n.Start())
	require.NoError(t, n.Stop())
	require.NoError(t, n.Dispose())
}

func TestNodeLifecycleOutOfOrderIsFatal(t *testing.T) {
	t.Parallel()
	n := New(sig(false), KindCompute, func(ctx *EvalContext) error { return nil }, nil, nil)

	err := n.Start() // skipped Initialise
	require.Error(t, err)
	require.True(t, errors.Is(err, engerr.ErrOutOfOrderLifecycle))
}

func TestEvalBeforeStartIsFatal(t *testing.T) {
	t.Parallel()
	n := New(sig(false), KindCompute, func(ctx *EvalContext) error { return nil }, nil, nil)
	require.NoError(t, n.Initialise())

	err := n.Eval(&EvalContext{Now: 1})
	require.True(t, errors.Is(err, engerr.ErrOutOfOrderLifecycle))
}

func TestEvalPropagatesWithoutCaptureException(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	n := New(sig(false), KindCompute, func(ctx *EvalContext) error { return boom }, nil, nil)
	require.NoError(t, n.Initialise())
	require.NoError(t, n.Start())

	err := n.Eval(&EvalContext{Now: 1})
	require.Error(t, err)
	var ne *engerr.NodeError
	require.ErrorAs(t, err, &ne)
	require.Equal(t, "adder (add1): boom", ne.Error())
}

func TestEvalCapturesExceptionToErrorOutput(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	n := New(sig(true), KindCompute, func(ctx *EvalContext) error { return boom }, nil, nil)
	require.NoError(t, n.Initialise())
	require.NoError(t, n.Start())

	err := n.Eval(&EvalContext{Now: 5})
	require.NoError(t, err, "capture_exception must not propagate")
	require.True(t, n.ErrorOutput().Valid())
	ne := n.ErrorOutput().Value().(*engerr.NodeError)
	require.Equal(t, "boom", ne.ErrorMsg)
}

func TestEvalCapturesPanicWhenCaptureExceptionSet(t *testing.T) {
	t.Parallel()
	n := New(sig(true), KindCompute, func(ctx *EvalContext) error { panic("kaboom") }, nil, nil)
	require.NoError(t, n.Initialise())
	require.NoError(t, n.Start())

	err := n.Eval(&EvalContext{Now: 1})
	require.NoError(t, err)
	require.True(t, n.ErrorOutput().Valid())
}

func TestPushNodeBackpressureRequeuesAtFront(t *testing.T) {
	t.Parallel()
	var delivered []any
	capacity := 0
	p := NewPushNode(sig(false), func(ctx *EvalContext) error { return nil },
		func(ctx *EvalContext, msg any) bool {
			if capacity <= 0 {
				return false
			}
			capacity--
			delivered = append(delivered, msg)
			return true
		}, nil, nil)

	p.Receiver().Enqueue("m1")
	p.Receiver().Enqueue("m2")

	ok, requeued := p.DrainOne(&EvalContext{Now: 1})
	require.False(t, ok)
	require.True(t, requeued)
	require.Equal(t, 2, p.Receiver().Len(), "message must be put back, not dropped")

	capacity = 5
	ok, requeued = p.DrainOne(&EvalContext{Now: 1})
	require.True(t, ok)
	require.False(t, requeued)
	require.Equal(t, []any{"m1"}, delivered, "requeued message must be delivered first")
}
