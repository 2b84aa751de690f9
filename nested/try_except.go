package nested

import (
	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/tsvalue"
)

// TryExcept wraps one sub-graph; exceptions raised inside it are
// captured to errorOutput and never propagate to the outer graph (spec
// §4.6: "no propagation to outer graph for handled errors").
type TryExcept struct {
	*node.Node

	sub         *graph.Graph
	errorOutput *tsvalue.TS
	started     bool
	nextWake    tstime.Time
}

// NewTryExcept constructs a try_except node wrapping an already built,
// Created sub-graph. errorOutput must be non-nil — a try_except with
// nowhere to send captured errors would silently discard them.
func NewTryExcept(sig node.Signature, sub *graph.Graph, errorOutput *tsvalue.TS) *TryExcept {
	te := &TryExcept{sub: sub, errorOutput: errorOutput, nextWake: tstime.MaxDT}
	sig.Flags.CaptureException = true
	te.Node = node.New(sig, node.KindCompute, te.apply, nil, []tsvalue.Value{errorOutput})
	return te
}

func (te *TryExcept) apply(ctx *node.EvalContext) error {
	if !te.started {
		if err := te.sub.Initialise(); err != nil {
			return err
		}
		if err := te.sub.Start(); err != nil {
			return err
		}
		te.started = true
		te.nextWake = ctx.Now
	}
	if te.nextWake != ctx.Now {
		return nil
	}
	te.nextWake = tstime.MaxDT
	nc := NewNestedClock(ctx.Now, func(t tstime.Time) { te.nextWake = t }, ctx.Schedule)
	if err := te.sub.EvaluateGraph(nc); err != nil {
		ne := engerr.New(te.Signature().Name, te.Signature().Flags.Label, te.Signature().Flags.WiringPathName, err)
		te.errorOutput.Set(ctx.Now, ne)
	}
	return nil
}

func (te *TryExcept) ErrorOutput() *tsvalue.TS { return te.errorOutput }
