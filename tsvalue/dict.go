package tsvalue

import (
	"github.com/sbl8/tsflow/slotstore"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// Dict is a keyed collection of time-series values with per-tick
// add/remove/update deltas (TSD).
type Dict struct {
	base
	storage     *slotstore.MapStorage[any, Value]
	delta       *slotstore.MapDelta
	newChild    func(*typesys.TSMeta) Value
	removedKeys map[uint32]any // transient: removed-this-tick keys, keyed by their now-dead slot
}

// NewDict allocates an empty Dict over the given key/value schema.
func NewDict(meta *typesys.TSMeta, newChild func(*typesys.TSMeta) Value) *Dict {
	if meta.Kind != typesys.TSD {
		panic("tsvalue: NewDict requires a typesys.TSD schema")
	}
	return &Dict{
		base:        newBase(meta),
		storage:     slotstore.NewMapStorage[any, Value](),
		delta:       slotstore.NewMapDelta(),
		newChild:    newChild,
		removedKeys: map[uint32]any{},
	}
}

// DictCreate idempotently ensures key exists, constructing a fresh child
// Value on first creation.
func (d *Dict) DictCreate(now tstime.Time, key any) Value {
	slot, inserted := d.storage.DictCreate(key)
	if inserted {
		child := d.newChild(d.meta.Value)
		d.storage.DictSet(key, child)
		d.delta.RecordAdd(slot)
		d.touch(now)
		return child
	}
	return d.storage.GetAt(slot)
}

// DictSet upserts key -> a freshly constructed child, invoking assign to
// populate it. If key already existed, this is reported as an update
// rather than an add.
func (d *Dict) DictSet(now tstime.Time, key any, assign func(Value)) Value {
	existing, hadKey := d.storage.Get(key)
	var child Value
	if hadKey {
		child = existing
	} else {
		child = d.newChild(d.meta.Value)
	}
	if assign != nil {
		assign(child)
	}
	slot, inserted := d.storage.DictSet(key, child)
	if inserted {
		d.delta.RecordAdd(slot)
	} else {
		d.delta.RecordUpdate(slot)
	}
	d.touch(now)
	return child
}

// DictRemove removes key; the pre-erase value stays readable via Get
// for the remainder of this cycle, reporting absent only from the next
// cycle onward, once AfterEvaluation's EndCycle call actually erases the
// slot (see slotstore.MapStorage.DictRemove).
func (d *Dict) DictRemove(now tstime.Time, key any) bool {
	slot, ok := d.storage.Keys().Find(key)
	if !ok {
		return false
	}
	removed := d.storage.DictRemove(key)
	if removed {
		d.removedKeys[slot] = key
		d.delta.RecordRemove(slot, hashAny(key))
		d.touch(now)
	}
	return removed
}

// Added returns the keys added this tick.
func (d *Dict) Added() []any {
	ks := d.storage.Keys()
	out := make([]any, 0, d.delta.Added.Len())
	for _, slot := range d.delta.Added.Slots() {
		out = append(out, ks.KeyAt(slot))
	}
	return out
}

// Removed returns the keys removed this tick. Values are captured at
// removal time since KeySet.EraseSlot clears the slot's key immediately.
func (d *Dict) Removed() []any {
	out := make([]any, 0, d.delta.Removed.Len())
	for _, slot := range d.delta.Removed.Slots() {
		if k, ok := d.removedKeys[slot]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Updated returns the keys whose value was set in place this tick (as
// opposed to newly added) — used by nested.Map to know which multiplexed
// per-key sub-graphs need re-evaluating at the current time.
func (d *Dict) Updated() []any {
	ks := d.storage.Keys()
	out := make([]any, 0, d.delta.Updated.Len())
	for _, slot := range d.delta.Updated.Slots() {
		out = append(out, ks.KeyAt(slot))
	}
	return out
}

// Get returns the child Value for key, if present.
func (d *Dict) Get(key any) (Value, bool) { return d.storage.Get(key) }

// Len reports the current number of keys.
func (d *Dict) Len() int { return d.storage.Len() }

// Keys returns the currently live keys.
func (d *Dict) Keys() []any {
	out := make([]any, 0, d.storage.Len())
	ks := d.storage.Keys()
	for slot := uint32(0); int(slot) < ks.Capacity(); slot++ {
		if ks.IsAlive(slot) {
			out = append(out, ks.KeyAt(slot))
		}
	}
	return out
}

// Delta returns this tick's MapDelta.
func (d *Dict) Delta() *slotstore.MapDelta { return d.delta }

// AfterEvaluation resets this tick's delta and completes the deferred
// free of any slots erased this cycle.
func (d *Dict) AfterEvaluation() {
	d.delta.Reset()
	d.storage.EndCycle()
	d.removedKeys = map[uint32]any{}
}

// AllValid is recursive: true iff the dict itself is valid and every
// live value is AllValid.
func (d *Dict) AllValid(now tstime.Time) bool {
	if !d.valid {
		return false
	}
	ks := d.storage.Keys()
	for slot := uint32(0); int(slot) < ks.Capacity(); slot++ {
		if !ks.IsAlive(slot) {
			continue
		}
		if !d.storage.GetAt(slot).AllValid(now) {
			return false
		}
	}
	return true
}
