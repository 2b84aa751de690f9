package node

import (
	"sync"

	"github.com/sbl8/tsflow/tsvalue"
)

// Receiver is the MPSC queue a push-source node's sender side enqueues
// into from any thread; dequeue happens only on the engine thread (spec
// §5). enqueue/enqueue_front call Notify so the owning clock can mark
// push_node_requires_scheduling and, for real-time, wake a blocked
// advance_to_next_scheduled_time.
type Receiver struct {
	mu     sync.Mutex
	queue  []any
	Notify func()
}

func NewReceiver() *Receiver { return &Receiver{} }

// Enqueue appends to the tail (FIFO order for ordinary arriving messages).
func (r *Receiver) Enqueue(msg any) {
	r.mu.Lock()
	r.queue = append(r.queue, msg)
	r.mu.Unlock()
	if r.Notify != nil {
		r.Notify()
	}
}

// EnqueueFront reinserts a message that must be retried before anything
// already queued behind it — used for backpressure retry.
func (r *Receiver) EnqueueFront(msg any) {
	r.mu.Lock()
	r.queue = append([]any{msg}, r.queue...)
	r.mu.Unlock()
	if r.Notify != nil {
		r.Notify()
	}
}

// Dequeue pops the head message, if any.
func (r *Receiver) Dequeue() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil, false
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, true
}

func (r *Receiver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// ApplyMessageFunc delivers one dequeued message into the node's state.
// A false return means backpressure: capacity is not available and the
// message must be retried, unconsumed, next cycle.
type ApplyMessageFunc func(ctx *EvalContext, msg any) bool

// PushNode is a source node that sits at indices
// 0..push_source_nodes_end and is drained by the graph at the top of
// every cycle, ahead of ordinary compute-node evaluation (spec §4.5,
// §4.9).
type PushNode struct {
	*Node
	receiver     *Receiver
	applyMessage ApplyMessageFunc
}

func NewPushNode(sig Signature, apply ApplyFunc, applyMessage ApplyMessageFunc, inputs, outputs []tsvalue.Value) *PushNode {
	sig.Flags.IsSourceNode = true
	return &PushNode{
		Node:         New(sig, KindPush, apply, inputs, outputs),
		receiver:     NewReceiver(),
		applyMessage: applyMessage,
	}
}

func (p *PushNode) Receiver() *Receiver { return p.receiver }

// DrainOne delivers at most one message. delivered is true iff a message
// was consumed; requiresReschedule is true iff a message was put back at
// the front due to backpressure (the caller must mark the clock's
// push_node_requires_scheduling in that case).
func (p *PushNode) DrainOne(ctx *EvalContext) (delivered, requiresReschedule bool) {
	msg, ok := p.receiver.Dequeue()
	if !ok {
		return false, false
	}
	if !p.applyMessage(ctx, msg) {
		p.receiver.EnqueueFront(msg)
		return false, true
	}
	return true, false
}
