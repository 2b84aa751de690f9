// Package tsvalue implements the owned time-series storage
// (TSValue/Value) and the schema-aware specialisations for each TSKind:
// scalar (TS), bundle (TSB), list (TSL), dict (TSD), set (TSS), window
// (TSW), reference (REF) and signal.
//
// Every concrete type embeds base, which tracks (last_modified_time,
// valid, TSMeta) and owns the Value's subscriber list — the analogue of
// the teacher's core.Sublate owning its dual PayloadPrev/PayloadProp
// buffers, except here the "buffer" is type-erased (any) because the
// payload shape is driven by an interned TSMeta rather than fixed at
// compile time.
package tsvalue

import (
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// Observer is notified when a Value ticks. Inputs (tslink.TSLink) and the
// REF control channel implement this to learn about upstream changes.
type Observer interface {
	OnNotify(t tstime.Time)
}

// ObserverList is the subscriber list owned by every output Value.
// Subscribe/Unsubscribe are idempotent, matching the "unsubscribe must be
// idempotent" remapping note in spec §9.
type ObserverList struct {
	subs []Observer
}

func (l *ObserverList) Subscribe(o Observer) {
	for _, s := range l.subs {
		if s == o {
			return
		}
	}
	l.subs = append(l.subs, o)
}

func (l *ObserverList) Unsubscribe(o Observer) {
	for i, s := range l.subs {
		if s == o {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			return
		}
	}
}

func (l *ObserverList) Notify(t tstime.Time) {
	for _, s := range l.subs {
		s.OnNotify(t)
	}
}

func (l *ObserverList) Len() int { return len(l.subs) }

// Value is the common interface satisfied by every TS specialisation.
type Value interface {
	Meta() *typesys.TSMeta
	LastModifiedTime() tstime.Time
	Modified(now tstime.Time) bool
	Valid() bool
	AllValid(now tstime.Time) bool
	Observers() *ObserverList
	Invalidate()
}

// base is embedded by every concrete Value implementation.
type base struct {
	meta         *typesys.TSMeta
	lastModified tstime.Time
	valid        bool
	observers    ObserverList
}

func newBase(meta *typesys.TSMeta) base {
	return base{meta: meta, lastModified: tstime.MinDT}
}

func (b *base) Meta() *typesys.TSMeta             { return b.meta }
func (b *base) LastModifiedTime() tstime.Time     { return b.lastModified }
func (b *base) Modified(now tstime.Time) bool     { return b.valid && b.lastModified == now }
func (b *base) Valid() bool                       { return b.valid }
func (b *base) Observers() *ObserverList          { return &b.observers }
func (b *base) Invalidate()                       { b.valid = false; b.lastModified = tstime.MinDT }

// touch marks the value modified at time now and notifies subscribers.
// Every specialisation's mutator ends by calling this.
func (b *base) touch(now tstime.Time) {
	b.valid = true
	b.lastModified = now
	b.observers.Notify(now)
}
