// Package node implements the node model: per-kind signatures, the
// lifecycle state machine, the eval contract, and push-source dequeue
// with MPSC backpressure.
package node

// Flags are the signature flags named in spec §4.5.
type Flags struct {
	CaptureException bool
	CaptureValues     bool
	TraceBackDepth    int
	IsSourceNode      bool
	RecordReplayID    string
	Label             string
	WiringPathName    string
}

// Arg describes one named input or output slot in a Signature.
type Arg struct {
	Name string
	Kind string // descriptive only; structural typing lives in typesys.TSMeta
}

// Signature is the static description returned by Node.Signature(): name,
// declared args, and the flags that govern eval/error/record-replay
// behavior.
type Signature struct {
	Name   string
	Inputs []Arg
	Output []Arg
	Flags  Flags
}

// Kind distinguishes compute nodes from the three node shapes the
// executor treats specially: source (push), sink (no outputs it itself
// schedules), and ordinary push-source nodes living below
// push_source_nodes_end.
type Kind int

const (
	KindCompute Kind = iota
	KindSource
	KindSink
	KindPush
)

func (k Kind) String() string {
	switch k {
	case KindCompute:
		return "compute"
	case KindSource:
		return "source"
	case KindSink:
		return "sink"
	case KindPush:
		return "push"
	default:
		return "unknown"
	}
}
