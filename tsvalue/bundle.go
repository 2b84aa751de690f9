package tsvalue

import (
	"fmt"

	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// Bundle is a fixed, named record of time-series children.
type Bundle struct {
	base
	fields []Value
}

// NewBundle allocates a Bundle from schema meta, constructing one child
// Value per field via newChild (so bundles of bundles, bundles of
// windows, etc. all compose through the same factory used by the graph
// builder).
func NewBundle(meta *typesys.TSMeta, newChild func(*typesys.TSMeta) Value) *Bundle {
	if meta.Kind != typesys.TSB {
		panic("tsvalue: NewBundle requires a typesys.TSB schema")
	}
	b := &Bundle{base: newBase(meta), fields: make([]Value, len(meta.Fields))}
	for i, f := range meta.Fields {
		b.fields[i] = newChild(f.Meta)
	}
	return b
}

// FieldCount returns the number of named fields.
func (b *Bundle) FieldCount() int { return len(b.fields) }

// FieldAt returns the i-th field's Value.
func (b *Bundle) FieldAt(i int) Value { return b.fields[i] }

// FieldByName returns the named field's Value, or nil if absent.
func (b *Bundle) FieldByName(name string) Value {
	idx := b.meta.FieldIndex(name)
	if idx < 0 {
		return nil
	}
	return b.fields[idx]
}

// Touch marks the bundle container itself modified at now (its own
// last_modified_time tracks "a child changed this tick", separate from
// each child's own timestamp) and notifies the bundle's own subscribers
// (container-level, non-peered, links — see tslink).
func (b *Bundle) Touch(now tstime.Time) { b.touch(now) }

// AllValid is recursive: true iff the bundle itself is valid and every
// field is AllValid.
func (b *Bundle) AllValid(now tstime.Time) bool {
	if !b.valid {
		return false
	}
	for _, f := range b.fields {
		if !f.AllValid(now) {
			return false
		}
	}
	return true
}

// Set assigns a structurally-equal value to every non-REF leaf of the
// bundle, used by the round-trip test in spec §8 ("output.set(v);
// input.value() yields an object structurally equal to v for every
// non-REF leaf"). v must be a map[string]any keyed by field name, scalar
// leaves recursively.
func (b *Bundle) Set(now tstime.Time, v map[string]any) error {
	for name, val := range v {
		idx := b.meta.FieldIndex(name)
		if idx < 0 {
			return fmt.Errorf("tsvalue: bundle %s has no field %q", b.meta, name)
		}
		if err := setLeaf(b.fields[idx], now, val); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	b.touch(now)
	return nil
}

// setLeaf dispatches a structural Set() call by the child's concrete kind.
func setLeaf(v Value, now tstime.Time, val any) error {
	switch child := v.(type) {
	case *TS:
		child.Set(now, val)
		return nil
	case *Bundle:
		m, ok := val.(map[string]any)
		if !ok {
			return fmt.Errorf("expected map[string]any for nested bundle, got %T", val)
		}
		return child.Set(now, m)
	case *Ref:
		// REF leaves are excluded from the structural-equality contract.
		return nil
	default:
		return fmt.Errorf("tsvalue: Set not supported for %T", v)
	}
}

// Value reconstructs a plain Go value mirroring the bundle's current
// state, for every non-REF leaf — the read side of the round-trip
// property above.
func (b *Bundle) Value() map[string]any {
	out := make(map[string]any, len(b.fields))
	for i, f := range b.fields {
		name := b.meta.Fields[i].Name
		switch child := f.(type) {
		case *TS:
			out[name] = child.Value()
		case *Bundle:
			out[name] = child.Value()
		}
	}
	return out
}
