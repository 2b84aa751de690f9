package node

import "github.com/sbl8/tsflow/engerr"

// State is a node's position in the Created → Initialised → Started →
// (Evaluated)* → Stopped → Disposed lifecycle (spec §4.5). Eval is the
// only method callable more than once; every other transition is
// one-shot and out-of-order calls are fatal (spec §7).
type State int

const (
	StateCreated State = iota
	StateInitialised
	StateStarted
	StateStopped
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialised:
		return "initialised"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// lifecycle is embedded by Node to enforce the one-shot transition order.
// Eval is intentionally not gated here — Node.Eval checks StateStarted
// directly since it is the one method called many times.
type lifecycle struct {
	state State
}

func (l *lifecycle) requireTransition(from State, context string) error {
	if l.state != from {
		return engerr.Fatal(engerr.ErrOutOfOrderLifecycle, context)
	}
	return nil
}

func (l *lifecycle) advance(to State) { l.state = to }

func (l *lifecycle) State() State { return l.state }
