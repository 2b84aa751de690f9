// Package typesys implements the run-time type metadata layer: value-level
// TypeMeta (size, alignment, op vtable) and time-series-level TSMeta
// (scalar/bundle/list/dict/set/window/ref/signal schema). Both are
// interned by a process-wide registry so that structurally equal specs
// share pointer identity, matching the canonicalisation rule in spec §4.1.
//
// The design mirrors the teacher's core package: TypeMeta plays the role
// core.Sublate played for memory layout (size/alignment utilities in
// align.go), but the payload here is type-level metadata rather than a
// compute buffer, and equality/hash/copy are dispatched through a per-kind
// ops table instead of being fixed at compile time.
package typesys

import (
	"fmt"
	"reflect"
)

// TypeKind tags the run-time shape of a value carried by a time series.
type TypeKind uint8

const (
	KindScalar TypeKind = iota
	KindBundle
	KindList
	KindDynamicList
	KindSet
	KindDict
	KindRef
	KindWindow
)

func (k TypeKind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindBundle:
		return "Bundle"
	case KindList:
		return "List"
	case KindDynamicList:
		return "DynamicList"
	case KindSet:
		return "Set"
	case KindDict:
		return "Dict"
	case KindRef:
		return "Ref"
	case KindWindow:
		return "Window"
	default:
		return "Unknown"
	}
}

// Flags describe value-level capabilities used by slot storage and links
// to pick fast paths (e.g. a Hashable+Equatable scalar can be a KeySet key).
type Flags uint8

const (
	FlagHashable Flags = 1 << iota
	FlagEquatable
	FlagComparable
	FlagTriviallyCopyable
	FlagBufferCompatible
	FlagContainer
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Ops is the per-TypeMeta vtable. Construct/Destruct model lifecycle hooks
// for non-trivial payloads (e.g. releasing a handle); for scalar Go values
// they are usually no-ops because the garbage collector owns the memory.
type Ops struct {
	Construct func() any
	Destruct  func(any)
	Copy      func(any) any
	Equals    func(a, b any) bool
	Less      func(a, b any) bool
	Hash      func(any) uint64
	ToString  func(any) string
}

// TypeMeta is the immutable, interned value-level type descriptor.
type TypeMeta struct {
	Name      string
	Size      uintptr
	Align     uintptr
	Flags     Flags
	Kind      TypeKind
	GoType    reflect.Type
	Ops       Ops
	Composite *CompositeMeta
}

// CompositeMeta extends TypeMeta with field/element/key layout for
// Bundle/List/Dict/Set/Ref kinds.
type CompositeMeta struct {
	Fields     []FieldMeta // Bundle: named fields in declaration order
	Element    *TypeMeta   // List/Set/Ref target's payload type
	Key        *TypeMeta   // Dict key type
	Value      *TypeMeta   // Dict value type
	FixedSize  int         // List: >0 for fixed-size, 0 for dynamic
	FieldIndex map[string]int
}

// FieldMeta describes one named field of a Bundle.
type FieldMeta struct {
	Name   string
	Type   *TypeMeta
	Offset uintptr
}

func (t *TypeMeta) String() string {
	return fmt.Sprintf("TypeMeta{%s kind=%s size=%d align=%d}", t.Name, t.Kind, t.Size, t.Align)
}

// FieldByName finds a Bundle field by name, returning its index or -1.
func (t *TypeMeta) FieldByName(name string) int {
	if t.Composite == nil {
		return -1
	}
	if idx, ok := t.Composite.FieldIndex[name]; ok {
		return idx
	}
	return -1
}
