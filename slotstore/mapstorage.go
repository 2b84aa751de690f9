package slotstore

// MapStorage is a KeySet plus a parallel typed value array. Values are
// constructed on insert and destructed on erase; per spec §4.2/§8 property
// 4, a removed key's *old* value must remain readable (by Get, not just
// GetAt) for the rest of the current cycle and only report absent from the
// next cycle onward. DictRemove therefore does not touch the KeySet at
// all — it only records the slot as pending; the KeySet erase itself (and
// so the ks.index deletion Find relies on) happens at EndCycle.
type MapStorage[K comparable, V any] struct {
	keys         *KeySet[K]
	values       []V
	pendingErase []uint32 // slots to actually erase from keys at EndCycle
	removed      map[K]uint32
}

// NewMapStorage creates an empty MapStorage.
func NewMapStorage[K comparable, V any]() *MapStorage[K, V] {
	ms := &MapStorage[K, V]{keys: NewKeySet[K]()}
	ms.keys.AddObserver(ms)
	return ms
}

// Keys exposes the underlying KeySet for slot-level introspection.
func (ms *MapStorage[K, V]) Keys() *KeySet[K] { return ms.keys }

// Len reports the number of live keys.
func (ms *MapStorage[K, V]) Len() int { return ms.keys.Len() }

// DictCreate inserts key with the zero value if absent (idempotent).
func (ms *MapStorage[K, V]) DictCreate(key K) (uint32, bool) {
	slot, inserted := ms.keys.Insert(key)
	ms.unpendErase(key)
	return slot, inserted
}

// DictSet upserts key -> value.
func (ms *MapStorage[K, V]) DictSet(key K, value V) (uint32, bool) {
	slot, inserted := ms.keys.Insert(key)
	ms.values[slot] = value
	if !inserted {
		ms.keys.MarkUpdated(slot)
	}
	ms.unpendErase(key)
	return slot, inserted
}

// unpendErase cancels a same-cycle pending erase when key is (re)inserted
// before EndCycle has had a chance to physically erase its slot.
func (ms *MapStorage[K, V]) unpendErase(key K) {
	slot, wasPending := ms.removed[key]
	if !wasPending {
		return
	}
	delete(ms.removed, key)
	for i, s := range ms.pendingErase {
		if s == slot {
			ms.pendingErase = append(ms.pendingErase[:i], ms.pendingErase[i+1:]...)
			break
		}
	}
}

// Get returns the value at key and whether it is present (including a
// value removed earlier *this* cycle, per §8 property 4's
// readable-within-cycle contract; from the next cycle onward Get reports
// absent, once EndCycle has actually erased the KeySet entry).
func (ms *MapStorage[K, V]) Get(key K) (V, bool) {
	slot, ok := ms.keys.Find(key)
	if !ok {
		var zero V
		return zero, false
	}
	return ms.values[slot], true
}

// GetAt returns the value stored at a slot directly.
func (ms *MapStorage[K, V]) GetAt(slot uint32) V { return ms.values[slot] }

// DictRemove marks key for removal: the KeySet entry (and so ks.index,
// which Find/Get consult) is left untouched until EndCycle, so reads of
// key for the remainder of this cycle still see the pre-removal value.
// Only the physical erase is deferred; a second DictRemove of the same
// key within the same cycle is rejected, matching KeySet.Erase's own
// idempotent-false behavior on an already-gone key.
func (ms *MapStorage[K, V]) DictRemove(key K) bool {
	if ms.removed == nil {
		ms.removed = make(map[K]uint32)
	}
	if _, alreadyPending := ms.removed[key]; alreadyPending {
		return false
	}
	slot, ok := ms.keys.Find(key)
	if !ok {
		return false
	}
	ms.removed[key] = slot
	ms.pendingErase = append(ms.pendingErase, slot)
	return true
}

// EndCycle performs the deferred erase for every key removed during the
// cycle that just finished, then clears their values. Call this once per
// evaluation cycle, after all downstream readers have had their turn.
func (ms *MapStorage[K, V]) EndCycle() {
	for _, slot := range ms.pendingErase {
		ms.keys.EraseSlot(slot)
		var zero V
		ms.values[slot] = zero
	}
	ms.pendingErase = ms.pendingErase[:0]
	ms.removed = nil
}

// SlotObserver implementation: keeps ms.values in lockstep with the
// KeySet's slot allocation.

func (ms *MapStorage[K, V]) OnCapacity(oldCap, newCap int) {
	grown := make([]V, newCap)
	copy(grown, ms.values)
	ms.values = grown
}

func (ms *MapStorage[K, V]) OnInsert(slot uint32) {
	var zero V
	if int(slot) < len(ms.values) {
		ms.values[slot] = zero
	}
}

func (ms *MapStorage[K, V]) OnErase(uint32) {
	// Value is intentionally left in place until EndCycle; see DictRemove.
}

func (ms *MapStorage[K, V]) OnUpdate(uint32) {}

func (ms *MapStorage[K, V]) OnClear() {
	for i := range ms.values {
		var zero V
		ms.values[i] = zero
	}
	ms.pendingErase = ms.pendingErase[:0]
	ms.removed = nil
}
