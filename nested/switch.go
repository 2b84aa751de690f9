package nested

import (
	"fmt"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/tsvalue"
)

// Switch is the switch(key → sub-graph) nested node (spec §4.6):
// exactly one sub-graph is live at a time, rebuilt whenever keyInput's
// value changes, evaluated whenever its own NestedClock has it due.
type Switch struct {
	*node.Node

	keyInput *tsvalue.TS
	factory  SubGraphFactory

	currentKey   any
	haveKey      bool
	sub          *graph.Graph
	nextWake     tstime.Time
	errorOutput  *tsvalue.TS // TS[NodeError], nil unless capture_exception
}

func NewSwitch(sig node.Signature, keyInput *tsvalue.TS, factory SubGraphFactory, errorOutput *tsvalue.TS) *Switch {
	sw := &Switch{
		keyInput:    keyInput,
		factory:     factory,
		nextWake:    tstime.MaxDT,
		errorOutput: errorOutput,
	}
	sig.Flags.CaptureException = errorOutput != nil
	sw.Node = node.New(sig, node.KindCompute, sw.apply, []tsvalue.Value{keyInput}, nil)
	return sw
}

func (sw *Switch) apply(ctx *node.EvalContext) error {
	if sw.keyInput.Valid() {
		desired := sw.keyInput.Value()
		if !sw.haveKey || !valuesEqual(desired, sw.currentKey) {
			if sw.sub != nil {
				_ = sw.sub.ReduceGraph(0)
				sw.sub = nil
			}
			g, err := sw.factory(desired)
			if err != nil {
				return fmt.Errorf("nested.switch: build sub-graph for key %v: %w", desired, err)
			}
			if err := g.Initialise(); err != nil {
				return fmt.Errorf("nested.switch: initialise sub-graph for key %v: %w", desired, err)
			}
			if err := g.Start(); err != nil {
				return fmt.Errorf("nested.switch: start sub-graph for key %v: %w", desired, err)
			}
			sw.sub = g
			sw.currentKey = desired
			sw.haveKey = true
			sw.nextWake = ctx.Now
		}
	}

	if sw.sub == nil || sw.nextWake != ctx.Now {
		return nil
	}
	sw.nextWake = tstime.MaxDT
	nc := NewNestedClock(ctx.Now, func(t tstime.Time) { sw.nextWake = t }, ctx.Schedule)
	if err := sw.sub.EvaluateGraph(nc); err != nil {
		if sw.errorOutput == nil {
			return err
		}
		ne := engerr.New(sw.Signature().Name, sw.Signature().Flags.Label, sw.Signature().Flags.WiringPathName, err)
		sw.errorOutput.Set(ctx.Now, ne)
	}
	return nil
}

func (sw *Switch) ErrorOutput() *tsvalue.TS { return sw.errorOutput }
func (sw *Switch) ActiveKey() (any, bool)   { return sw.currentKey, sw.haveKey }
