package node

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

// ScheduleFunc is graph.schedule_node bound to a specific node instance;
// the graph supplies it when wiring a Node so eval bodies never see the
// graph directly. t < evaluation_time is a fatal programmer error (spec
// §4.5) and is surfaced as engerr.ErrScheduleInPast by the graph's own
// implementation of this func, not by Node itself.
type ScheduleFunc func(t tstime.Time) error

// EvalContext is passed to ApplyFunc on every eval call.
type EvalContext struct {
	Now      tstime.Time
	Schedule ScheduleFunc
}

// ApplyFunc is the opaque user-supplied node body (spec §1's "out of
// scope" user node function bodies) — the engine only ever calls it
// through this signature.
type ApplyFunc func(ctx *EvalContext) error

// Node is the polymorphic unit of graph evaluation: a signature, bound
// inputs/outputs, an opaque Apply body, and the lifecycle/error
// machinery common to every node kind (including nested-graph nodes in
// package nested, which embed Node).
type Node struct {
	lifecycle

	sig   Signature
	kind  Kind
	apply ApplyFunc

	inputs  []tsvalue.Value
	outputs []tsvalue.Value

	// errorOutput holds the most recent NodeError, written only when
	// sig.Flags.CaptureException is set (spec §6/§7). Modelled as a
	// scalar TS over an opaque schema since NodeError is not itself a
	// TS-representable value.
	errorOutput *tsvalue.TS

	// instanceID is a per-node-instance identifier distinct from
	// Signature.Name (many nodes can share a signature); used for
	// record/replay correlation and log lines, not for graph wiring.
	instanceID uuid.UUID
}

// ErrorOutputPayload is the registered scalar TypeMeta for
// *engerr.NodeError — not itself TS-representable data, just a
// diagnostic value, so a minimal Ops{ToString} registration is enough.
// Exported so nested-graph node kinds (package nested) can build
// TSD[K, NodeError]-shaped per-key error outputs over the same payload.
var ErrorOutputPayload = typesys.Global().RegisterScalar("engerr.NodeError", 0, 8, 0, typesys.Ops{
	ToString: func(v any) string {
		if ne, ok := v.(*engerr.NodeError); ok {
			return ne.Error()
		}
		return ""
	},
})

// ErrorOutputMeta is the scalar TS schema used for a single node's error
// output.
var ErrorOutputMeta = typesys.Ts(ErrorOutputPayload)

// New constructs a node in StateCreated. inputs/outputs are the already-
// allocated Value instances the graph will bind edges to or from.
func New(sig Signature, kind Kind, apply ApplyFunc, inputs, outputs []tsvalue.Value) *Node {
	n := &Node{sig: sig, kind: kind, apply: apply, inputs: inputs, outputs: outputs, instanceID: uuid.New()}
	if sig.Flags.CaptureException {
		n.errorOutput = tsvalue.NewTS(ErrorOutputMeta)
	}
	return n
}

func (n *Node) Signature() Signature       { return n.sig }
func (n *Node) Kind() Kind                 { return n.kind }
func (n *Node) Inputs() []tsvalue.Value    { return n.inputs }
func (n *Node) Outputs() []tsvalue.Value   { return n.outputs }
func (n *Node) ErrorOutput() *tsvalue.TS   { return n.errorOutput }
func (n *Node) InstanceID() string         { return n.instanceID.String() }

func (n *Node) wiringPath() string {
	if n.sig.Flags.WiringPathName != "" {
		return n.sig.Flags.WiringPathName
	}
	return n.sig.Name
}

// Initialise moves Created → Initialised. Called once by graph.extend_graph.
func (n *Node) Initialise() error {
	if err := n.requireTransition(StateCreated, "node.initialise "+n.wiringPath()); err != nil {
		return err
	}
	n.advance(StateInitialised)
	return nil
}

// Start moves Initialised → Started. Called once the owning graph starts,
// unless extend_graph was called with delay_start.
func (n *Node) Start() error {
	if err := n.requireTransition(StateInitialised, "node.start "+n.wiringPath()); err != nil {
		return err
	}
	n.advance(StateStarted)
	return nil
}

// Stop moves Started → Stopped. Per spec §7, stop must continue past an
// internal failure and is never called more than once; it does not
// itself catch apply-level errors (there are none to catch — apply only
// runs inside Eval).
func (n *Node) Stop() error {
	if err := n.requireTransition(StateStarted, "node.stop "+n.wiringPath()); err != nil {
		return err
	}
	n.advance(StateStopped)
	return nil
}

// Dispose moves Stopped → Disposed. Its only error is the fatal
// out-of-order lifecycle error when the node is not Stopped; disposal
// itself has no other failure path.
func (n *Node) Dispose() error {
	if err := n.requireTransition(StateStopped, "node.dispose "+n.wiringPath()); err != nil {
		return err
	}
	n.advance(StateDisposed)
	return nil
}

// Eval runs the node body for the current cycle. The caller (graph) must
// already have set ctx.Now to evaluation_time and ctx.Schedule to a
// function enforcing t >= evaluation_time. If the signature captures
// exceptions, both panics and returned errors from apply are caught and
// written to errorOutput; otherwise they propagate to the caller, which
// is expected to enrich and re-raise per spec §4.9.
func (n *Node) Eval(ctx *EvalContext) (err error) {
	if n.state != StateStarted {
		return engerr.Fatal(engerr.ErrOutOfOrderLifecycle, "node.eval "+n.wiringPath()+" before start")
	}

	if n.sig.Flags.CaptureException {
		defer func() {
			if r := recover(); r != nil {
				err = n.captureError(ctx.Now, fmt.Errorf("panic: %v", r))
			}
		}()
	}

	applyErr := n.apply(ctx)
	if applyErr == nil {
		return nil
	}
	if n.sig.Flags.CaptureException {
		return n.captureError(ctx.Now, applyErr)
	}
	return engerr.New(n.sig.Name, n.sig.Flags.Label, n.wiringPath(), applyErr)
}

// captureError writes a NodeError to errorOutput and swallows it — the
// cycle continues, matching spec §7's "materialised into the node's
// error output" capture_exception path.
func (n *Node) captureError(now tstime.Time, cause error) error {
	ne := engerr.New(n.sig.Name, n.sig.Flags.Label, n.wiringPath(), cause)
	n.errorOutput.Set(now, ne)
	return nil
}
