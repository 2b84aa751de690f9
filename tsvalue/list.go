package tsvalue

import (
	"fmt"

	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// List is a positional collection of time-series children, either
// fixed-size (meta.FixedLen > 0) or dynamic.
type List struct {
	base
	elements []Value
	newChild func(*typesys.TSMeta) Value // retained so dynamic Append can grow
}

// NewList allocates a List. Fixed-size lists pre-construct every element
// slot up front; dynamic lists start empty.
func NewList(meta *typesys.TSMeta, newChild func(*typesys.TSMeta) Value) *List {
	if meta.Kind != typesys.TSL {
		panic("tsvalue: NewList requires a typesys.TSL schema")
	}
	l := &List{base: newBase(meta), newChild: newChild}
	if meta.FixedLen > 0 {
		l.elements = make([]Value, meta.FixedLen)
		for i := range l.elements {
			l.elements[i] = newChild(meta.Element)
		}
	}
	return l
}

func (l *List) IsDynamic() bool  { return l.meta.FixedLen == 0 }
func (l *List) Len() int         { return len(l.elements) }
func (l *List) ElementAt(i int) Value { return l.elements[i] }

// Append adds a new element to a dynamic list, returning its index.
func (l *List) Append(now tstime.Time) (int, error) {
	if !l.IsDynamic() {
		return 0, fmt.Errorf("tsvalue: cannot Append to fixed-size list")
	}
	l.elements = append(l.elements, l.newChild(l.meta.Element))
	l.touch(now)
	return len(l.elements) - 1, nil
}

// RemoveAt removes the element at index i from a dynamic list.
func (l *List) RemoveAt(now tstime.Time, i int) error {
	if !l.IsDynamic() {
		return fmt.Errorf("tsvalue: cannot RemoveAt on fixed-size list")
	}
	if i < 0 || i >= len(l.elements) {
		return fmt.Errorf("tsvalue: index %d out of range", i)
	}
	l.elements = append(l.elements[:i], l.elements[i+1:]...)
	l.touch(now)
	return nil
}

func (l *List) Touch(now tstime.Time) { l.touch(now) }

func (l *List) AllValid(now tstime.Time) bool {
	if !l.valid {
		return false
	}
	for _, e := range l.elements {
		if !e.AllValid(now) {
			return false
		}
	}
	return true
}
