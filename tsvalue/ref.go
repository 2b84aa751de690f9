package tsvalue

import (
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// Ref holds an opaque handle to another output Value, rebindable at
// runtime. It carries no payload of its own: reading through a Ref means
// following Target, which the graph executor keeps current via the
// two-channel control/data subscription described in tslink.
type Ref struct {
	base
	target Value // nil when unbound
}

// NewRef allocates an unbound Ref over the given target schema
// (meta.Element names the schema the ref must eventually point at).
func NewRef(meta *typesys.TSMeta) *Ref {
	if meta.Kind != typesys.REF {
		panic("tsvalue: NewRef requires a typesys.REF schema")
	}
	return &Ref{base: newBase(meta)}
}

// Bind points the ref at target, recording the rebind as a modification
// at now. Binding is the only mutator a Ref exposes directly; moving data
// through the bound target is the concern of tslink.TSRefTargetLink.
func (r *Ref) Bind(now tstime.Time, target Value) {
	r.target = target
	r.touch(now)
}

// Unbind clears the current target.
func (r *Ref) Unbind(now tstime.Time) {
	r.target = nil
	r.touch(now)
}

// IsBound reports whether the ref currently points at a target.
func (r *Ref) IsBound() bool { return r.target != nil }

// IsPeered reports whether the bound target lives in the same graph
// instance as this ref (same pointer identity of target's owning node is
// a node/graph-level concern; at the value level IsPeered degenerates to
// IsBound, since tsvalue has no notion of node ownership).
func (r *Ref) IsPeered() bool { return r.IsBound() }

// Target returns the currently bound Value, or nil.
func (r *Ref) Target() Value { return r.target }

func (r *Ref) AllValid(now tstime.Time) bool {
	if !r.valid {
		return false
	}
	if r.target == nil {
		return false
	}
	return r.target.AllValid(now)
}
