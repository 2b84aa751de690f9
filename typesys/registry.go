package typesys

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry interns TypeMeta/TSMeta instances process-wide. Every lookup
// and every insert takes mu, so reads are not lock-free: a lookup of an
// already-published key waits for any insert in progress.
type Registry struct {
	mu       sync.Mutex
	types    map[string]*TypeMeta
	tsMetas  map[string]*TSMeta
}

var global = newRegistry()

func newRegistry() *Registry {
	return &Registry{
		types:   make(map[string]*TypeMeta),
		tsMetas: make(map[string]*TSMeta),
	}
}

// Global returns the process-wide registry used by the Ts/Tsb/... helpers.
func Global() *Registry { return global }

// RegisterScalar interns a scalar TypeMeta by name, returning the existing
// instance if one with this name was already registered (idempotent).
func (r *Registry) RegisterScalar(name string, size, align uintptr, flags Flags, ops Ops) *TypeMeta {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[name]; ok {
		return existing
	}
	tm := &TypeMeta{Name: name, Size: size, Align: align, Flags: flags, Kind: KindScalar, Ops: ops}
	r.types[name] = tm
	return tm
}

func (r *Registry) internTS(key string, build func() *TSMeta) *TSMeta {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.tsMetas[key]; ok {
		return existing
	}
	m := build()
	m.derived = buildDerivedSchemas(m)
	r.tsMetas[key] = m
	return m
}

// Ts interns a scalar time series over the given payload TypeMeta.
func (r *Registry) Ts(payload *TypeMeta) *TSMeta {
	key := fmt.Sprintf("TS(%p)", payload)
	return r.internTS(key, func() *TSMeta {
		return &TSMeta{Kind: TS, Payload: payload}
	})
}

// Tsb interns a bundle schema. Field order is part of the interning key:
// the same fields in a different declaration order are a distinct schema,
// because downstream code binds by position as well as by name.
func (r *Registry) Tsb(name string, fields []TSField) *TSMeta {
	var sb strings.Builder
	sb.WriteString("TSB(")
	sb.WriteString(name)
	for _, f := range fields {
		fmt.Fprintf(&sb, "|%s:%p", f.Name, f.Meta)
	}
	sb.WriteString(")")
	key := sb.String()
	return r.internTS(key, func() *TSMeta {
		cp := make([]TSField, len(fields))
		copy(cp, fields)
		return &TSMeta{Kind: TSB, Fields: cp}
	})
}

// Tsl interns a list schema; fixedSize == 0 means a dynamic list.
func (r *Registry) Tsl(element *TSMeta, fixedSize int) *TSMeta {
	kind := TSL
	key := fmt.Sprintf("TSL(%p,%d)", element, fixedSize)
	return r.internTS(key, func() *TSMeta {
		return &TSMeta{Kind: kind, Element: element, FixedLen: fixedSize}
	})
}

// Tsd interns a dict schema keyed by a hashable/equatable scalar TypeMeta.
func (r *Registry) Tsd(key *TypeMeta, value *TSMeta) *TSMeta {
	if !key.Flags.Has(FlagHashable) || !key.Flags.Has(FlagEquatable) {
		panic(fmt.Sprintf("typesys: dict key type %s must be Hashable+Equatable", key.Name))
	}
	k := fmt.Sprintf("TSD(%p,%p)", key, value)
	return r.internTS(k, func() *TSMeta {
		return &TSMeta{Kind: TSD, Key: key, Value: value}
	})
}

// Tss interns a set schema over a hashable/equatable element.
func (r *Registry) Tss(element *TSMeta) *TSMeta {
	if element.Kind != TS || !element.Payload.Flags.Has(FlagHashable) {
		panic("typesys: TSS element must be a hashable scalar TS")
	}
	key := fmt.Sprintf("TSS(%p)", element)
	return r.internTS(key, func() *TSMeta {
		return &TSMeta{Kind: TSS, Element: element}
	})
}

// Tsw interns a fixed (tick-count) window schema.
func (r *Registry) Tsw(value *TypeMeta, size, minSize int64) *TSMeta {
	key := fmt.Sprintf("TSW(%p,%d,%d,tick)", value, size, minSize)
	return r.internTS(key, func() *TSMeta {
		return &TSMeta{Kind: TSW, Payload: value, WindowSize: size, WindowMinSize: minSize}
	})
}

// TswDuration interns a duration-based window schema.
func (r *Registry) TswDuration(value *TypeMeta, duration, minDuration int64) *TSMeta {
	key := fmt.Sprintf("TSW(%p,%d,%d,dur)", value, duration, minDuration)
	return r.internTS(key, func() *TSMeta {
		return &TSMeta{Kind: TSW, Payload: value, IsDurationBased: true, WindowSize: duration, WindowMinSize: minDuration}
	})
}

// Ref interns a REF schema pointing at a target schema.
func (r *Registry) Ref(target *TSMeta) *TSMeta {
	key := fmt.Sprintf("REF(%p)", target)
	return r.internTS(key, func() *TSMeta {
		return &TSMeta{Kind: REF, Element: target}
	})
}

// Signal interns the single, shared SIGNAL schema (no payload, no
// children: every call returns the same instance).
func (r *Registry) Signal() *TSMeta {
	return r.internTS("SIGNAL", func() *TSMeta {
		return &TSMeta{Kind: SIGNAL}
	})
}

// Snapshot returns the sorted list of interned TS schema descriptions,
// used by diagnostics/tests to assert interning behavior without
// depending on map iteration order.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.tsMetas))
	for _, m := range r.tsMetas {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

// Package-level convenience wrappers over the global registry.
func Ts(payload *TypeMeta) *TSMeta                         { return global.Ts(payload) }
func Tsb(name string, fields []TSField) *TSMeta            { return global.Tsb(name, fields) }
func Tsl(element *TSMeta, fixedSize int) *TSMeta           { return global.Tsl(element, fixedSize) }
func Tsd(key *TypeMeta, value *TSMeta) *TSMeta             { return global.Tsd(key, value) }
func Tss(element *TSMeta) *TSMeta                          { return global.Tss(element) }
func Tsw(value *TypeMeta, size, minSize int64) *TSMeta     { return global.Tsw(value, size, minSize) }
func TswDuration(value *TypeMeta, dur, min int64) *TSMeta  { return global.TswDuration(value, dur, min) }
func Ref(target *TSMeta) *TSMeta                           { return global.Ref(target) }
func Signal() *TSMeta                                      { return global.Signal() }
