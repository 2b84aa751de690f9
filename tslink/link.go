// Package tslink implements the subscription edges between a node's
// inputs and the outputs they read: the single-channel TSLink and the
// two-channel TSRefTargetLink used for REF inputs.
package tslink

import (
	"fmt"

	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

// TSLink is the subscription handle between one input and one output.
// Binding copies nothing from the output; it just installs the owner as
// a subscriber on the output's ObserverList, so the owner's OnNotify
// fires whenever the output ticks.
type TSLink struct {
	owner  tsvalue.Observer
	output tsvalue.Value
	active bool
}

// NewTSLink creates an unbound link that will notify owner once bound.
func NewTSLink(owner tsvalue.Observer) *TSLink {
	return &TSLink{owner: owner}
}

// Bind installs the subscription on output, replacing any prior binding.
func (l *TSLink) Bind(output tsvalue.Value) {
	if l.output != nil {
		l.Unbind()
	}
	l.output = output
	l.active = true
	output.Observers().Subscribe(l.owner)
}

// Unbind removes the subscription, if any. Idempotent.
func (l *TSLink) Unbind() {
	if l.output == nil {
		return
	}
	l.output.Observers().Unsubscribe(l.owner)
	l.output = nil
	l.active = false
}

// MakeActive re-installs the subscription without changing the binding.
func (l *TSLink) MakeActive() {
	if l.output == nil || l.active {
		return
	}
	l.output.Observers().Subscribe(l.owner)
	l.active = true
}

// MakePassive removes the subscription without clearing the binding, so
// a later MakeActive restores it against the same output.
func (l *TSLink) MakePassive() {
	if l.output == nil || !l.active {
		return
	}
	l.output.Observers().Unsubscribe(l.owner)
	l.active = false
}

func (l *TSLink) Output() tsvalue.Value { return l.output }
func (l *TSLink) IsActive() bool        { return l.active }
func (l *TSLink) IsBound() bool         { return l.output != nil }

// Bind wires input to output, recursing per the container fan-out rule:
// binding a TSB or fixed-size TSL input to a non-REF output installs a
// peered link (container-level plus one link per child); binding to a
// REF output, or binding any other kind, installs a single container-
// level link. It returns every TSLink created, owner-most first, so the
// caller (typically a node's input-binding setup) can tear them all down
// symmetrically.
func Bind(owner tsvalue.Observer, input, output tsvalue.Value) ([]*TSLink, error) {
	top := NewTSLink(owner)
	top.Bind(output)
	links := []*TSLink{top}

	if output.Meta().Kind == typesys.REF {
		return links, nil
	}

	switch in := input.(type) {
	case *tsvalue.Bundle:
		out, ok := output.(*tsvalue.Bundle)
		if !ok {
			return nil, fmt.Errorf("tslink: cannot bind TSB input to %T output", output)
		}
		if in.FieldCount() != out.FieldCount() {
			return nil, fmt.Errorf("tslink: bundle field count mismatch (%d vs %d)", in.FieldCount(), out.FieldCount())
		}
		for i := 0; i < in.FieldCount(); i++ {
			child, err := Bind(owner, in.FieldAt(i), out.FieldAt(i))
			if err != nil {
				return nil, err
			}
			links = append(links, child...)
		}
	case *tsvalue.List:
		out, ok := output.(*tsvalue.List)
		if !ok {
			return nil, fmt.Errorf("tslink: cannot bind TSL input to %T output", output)
		}
		if in.IsDynamic() || out.IsDynamic() {
			break // dynamic lists bind at the container level only
		}
		if in.Len() != out.Len() {
			return nil, fmt.Errorf("tslink: fixed list length mismatch (%d vs %d)", in.Len(), out.Len())
		}
		for i := 0; i < in.Len(); i++ {
			child, err := Bind(owner, in.ElementAt(i), out.ElementAt(i))
			if err != nil {
				return nil, err
			}
			links = append(links, child...)
		}
	}
	return links, nil
}

// Unbind tears down every link a prior Bind call produced, in the same
// order Bind returned them (parent before children is harmless since
// unsubscribe is idempotent and order-independent).
func Unbind(links []*TSLink) {
	for _, l := range links {
		l.Unbind()
	}
}
