package tslink

import (
	"fmt"

	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/tsvalue"
)

// Resolver resolves a bound Ref to the Value it currently points at. A
// resolver may navigate into the target (e.g. to one element of a TSL);
// the simplest one returns ref.Target() directly.
type Resolver func(ref *tsvalue.Ref) tsvalue.Value

// RebindDelta is the combined add/remove view a downstream reader sees
// exactly once at the tick a REF retargets, computed by value rather than
// by slot since the old and new targets are independent storage
// instances (spec §4.4, §8 property 5).
type RebindDelta struct {
	Added          []any
	Removed        []any
	ChangedIndices []int // populated only when both targets are TSB
}

// TSRefTargetLink is the two-channel link behind a REF input: a control
// channel that is always subscribed to the REF output's own notifications
// (so it learns about every rebind), and a data channel — an ordinary
// TSLink — that tracks whatever the REF currently resolves to.
type TSRefTargetLink struct {
	nodeOwner tsvalue.Observer
	ref       *tsvalue.Ref
	resolve   Resolver

	control *TSLink
	data    *TSLink

	lastTarget tsvalue.Value
	delta      *RebindDelta
}

// NewTSRefTargetLink wires the control channel immediately; the data
// channel binds lazily on the first control notification (the ref may
// still be unbound at construction time, per spec §8 scenario 6).
func NewTSRefTargetLink(nodeOwner tsvalue.Observer, ref *tsvalue.Ref, resolve Resolver) *TSRefTargetLink {
	l := &TSRefTargetLink{nodeOwner: nodeOwner, ref: ref, resolve: resolve}
	l.data = NewTSLink(nodeOwner)
	l.control = NewTSLink(l)
	l.control.Bind(ref)
	return l
}

// OnNotify implements tsvalue.Observer for the control channel: any tick
// of the ref (bind/unbind/rebind) re-resolves and, if the target changed,
// rebinds the data channel.
func (l *TSRefTargetLink) OnNotify(now tstime.Time) {
	l.rebind(now)
}

func (l *TSRefTargetLink) rebind(now tstime.Time) {
	target := l.resolve(l.ref)
	if target == l.lastTarget {
		return
	}
	old := l.lastTarget
	l.data.Unbind()
	if target != nil {
		l.data.Bind(target)
	}
	l.delta = computeRebindDelta(old, target)
	l.lastTarget = target
}

// MakeActive/MakePassive affect only the data channel — the control
// channel is always active for the lifetime of the link.
func (l *TSRefTargetLink) MakeActive()  { l.data.MakeActive() }
func (l *TSRefTargetLink) MakePassive() { l.data.MakePassive() }

// Target returns the data channel's currently resolved output, if any.
func (l *TSRefTargetLink) Target() tsvalue.Value { return l.lastTarget }

// Delta returns this tick's rebind delta, or nil if no rebind happened
// this tick (or the target isn't a keyed collection).
func (l *TSRefTargetLink) Delta() *RebindDelta { return l.delta }

// AfterEvaluation clears the transient rebind delta. Neither the graph nor
// the executor calls it; the link's owner calls it once per cycle.
func (l *TSRefTargetLink) AfterEvaluation() {
	l.delta = nil
}

// Unbind tears down both channels.
func (l *TSRefTargetLink) Unbind() {
	l.control.Unbind()
	l.data.Unbind()
	l.lastTarget = nil
}

func computeRebindDelta(old, next tsvalue.Value) *RebindDelta {
	oldVals := collectionValues(old)
	newVals := collectionValues(next)
	if oldVals == nil && newVals == nil {
		return nil
	}
	added, removed := diffValues(oldVals, newVals)
	d := &RebindDelta{Added: added, Removed: removed}
	if ob, ok := old.(*tsvalue.Bundle); ok {
		if nb, ok := next.(*tsvalue.Bundle); ok {
			d.ChangedIndices = changedBundleFields(ob, nb)
		}
	}
	return d
}

func collectionValues(v tsvalue.Value) []any {
	switch c := v.(type) {
	case *tsvalue.Set:
		return c.AllValues()
	case *tsvalue.Dict:
		return c.Keys()
	default:
		return nil
	}
}

func valueKey(v any) string { return fmt.Sprintf("%v", v) }

func diffValues(oldVals, newVals []any) ([]any, []any) {
	oldIdx := make(map[string]any, len(oldVals))
	for _, v := range oldVals {
		oldIdx[valueKey(v)] = v
	}
	newIdx := make(map[string]any, len(newVals))
	for _, v := range newVals {
		newIdx[valueKey(v)] = v
	}
	var added, removed []any
	for k, v := range newIdx {
		if _, ok := oldIdx[k]; !ok {
			added = append(added, v)
		}
	}
	for k, v := range oldIdx {
		if _, ok := newIdx[k]; !ok {
			removed = append(removed, v)
		}
	}
	return added, removed
}

func changedBundleFields(old, next *tsvalue.Bundle) []int {
	if old.FieldCount() != next.FieldCount() {
		return nil
	}
	oldVal, newVal := old.Value(), next.Value()
	var changed []int
	for i := 0; i < old.FieldCount(); i++ {
		name := old.Meta().Fields[i].Name
		if fmt.Sprintf("%v", oldVal[name]) != fmt.Sprintf("%v", newVal[name]) {
			changed = append(changed, i)
		}
	}
	return changed
}
