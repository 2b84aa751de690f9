// Package slotstore implements the slot-stable storage layer backing
// TSS/TSD: a KeySet with O(1) insert/find/erase and stable slot indices,
// plus the parallel-array MapStorage built on top of it, and the
// SetDelta/MapDelta types used to report per-tick changes.
//
// The allocation discipline (free list reused most-recently-freed first, capacity
// doubled on exhaustion, observers notified before relocation) is
// grounded on the teacher's runtime.Arena: a KeySet's free list plays the
// role Arena's bump-allocator-with-regions played for raw bytes, adapted
// here to stable logical slots rather than byte offsets.
package slotstore

import "fmt"

// SlotHandle is a stable reference into a KeySet: it stays valid across
// unrelated mutations as long as the slot has not been erased and reused.
type SlotHandle struct {
	Slot       uint32
	Generation uint32
}

// SlotChecker is the minimal read surface IsValid needs; every
// KeySet[K] implements it regardless of K, since the methods involved
// don't mention K in their signature.
type SlotChecker interface {
	IsAlive(slot uint32) bool
	GenerationAt(slot uint32) uint32
}

// IsValid reports whether h still refers to the same logical entry it did
// when captured (§8 property 3).
func (h SlotHandle) IsValid(ks SlotChecker) bool {
	return ks.IsAlive(h.Slot) && ks.GenerationAt(h.Slot) == h.Generation
}

// SlotObserver is notified of KeySet structural changes so that parallel
// arrays (values, deltas, links) stay in lockstep.
type SlotObserver interface {
	OnCapacity(oldCap, newCap int)
	OnInsert(slot uint32)
	OnErase(slot uint32)
	OnUpdate(slot uint32)
	OnClear()
}

// deadGeneration is the generation stamp GenerationAt reports for a slot
// that has never been allocated or is currently erased.
const deadGeneration = 0

// KeySet stores keys of one comparable Go type with stable slot indices.
// Keys never move: erasing a slot only clears its liveness bit and pushes
// it onto the free list; liveness and generation are tracked separately so
// that reinserting into a freed slot can bump the generation past its
// previous value instead of resetting it — otherwise a SlotHandle captured
// before the erase would spuriously match the slot's new occupant (the ABA
// problem §8 property 3 rules out).
type KeySet[K comparable] struct {
	keys        []K
	generations []uint32
	alive       []bool
	index       map[K]uint32
	freeList    []uint32 // LIFO: most-recently-erased slot is handed out first
	aliveCount int
	observers  []SlotObserver
}

// NewKeySet creates an empty KeySet.
func NewKeySet[K comparable]() *KeySet[K] {
	return &KeySet[K]{index: make(map[K]uint32)}
}

// AddObserver registers a SlotObserver. Observers are notified in
// registration order.
func (ks *KeySet[K]) AddObserver(o SlotObserver) { ks.observers = append(ks.observers, o) }

// Len reports the number of live entries.
func (ks *KeySet[K]) Len() int { return ks.aliveCount }

// Capacity reports the number of slots currently backed by storage.
func (ks *KeySet[K]) Capacity() int { return len(ks.keys) }

// IsAlive reports whether slot currently holds a live entry.
func (ks *KeySet[K]) IsAlive(slot uint32) bool {
	return int(slot) < len(ks.alive) && ks.alive[slot]
}

// GenerationAt returns the current generation stamp of slot (0 if dead or
// out of range).
func (ks *KeySet[K]) GenerationAt(slot uint32) uint32 {
	if int(slot) >= len(ks.generations) || !ks.IsAlive(slot) {
		return deadGeneration
	}
	return ks.generations[slot]
}

// KeyAt returns the key stored at slot. Valid only while the slot is alive
// or, for TSD's "readable once after erase" contract, during the same
// cycle the erase happened in (callers that need that guarantee use
// MapStorage, which defers physical reuse of the slot).
func (ks *KeySet[K]) KeyAt(slot uint32) K { return ks.keys[slot] }

// Find returns the slot holding key, if any.
func (ks *KeySet[K]) Find(key K) (uint32, bool) {
	slot, ok := ks.index[key]
	return slot, ok
}

// Insert inserts key if absent, returning its slot and whether it was
// newly inserted (idempotent for an existing key).
func (ks *KeySet[K]) Insert(key K) (uint32, bool) {
	if slot, ok := ks.index[key]; ok {
		return slot, false
	}

	slot := ks.allocSlot()
	ks.keys[slot] = key
	ks.generations[slot]++
	if ks.generations[slot] == deadGeneration {
		ks.generations[slot]++ // skip the sentinel on uint32 wraparound
	}
	ks.alive[slot] = true
	ks.index[key] = slot
	ks.aliveCount++

	for _, o := range ks.observers {
		o.OnInsert(slot)
	}
	return slot, true
}

// allocSlot pops the most-recently-freed slot (LIFO), or grows storage
// when the free list is empty. Growth fires OnCapacity *before* any keys
// are relocated, per spec §4.2; because Go slices only grow the backing
// array without moving live logical slots away from callers (slot indices
// are never renumbered), relocation here is purely a capacity event, not
// a key-move event, which is the Go-idiomatic reading of that contract.
func (ks *KeySet[K]) allocSlot() uint32 {
	if n := len(ks.freeList); n > 0 {
		slot := ks.freeList[n-1]
		ks.freeList = ks.freeList[:n-1]
		return slot
	}

	oldCap := len(ks.keys)
	newCap := oldCap*2 + 1
	for _, o := range ks.observers {
		o.OnCapacity(oldCap, newCap)
	}

	grownKeys := make([]K, newCap)
	copy(grownKeys, ks.keys)
	ks.keys = grownKeys

	grownGen := make([]uint32, newCap)
	copy(grownGen, ks.generations)
	ks.generations = grownGen

	grownAlive := make([]bool, newCap)
	copy(grownAlive, ks.alive)
	ks.alive = grownAlive

	return uint32(oldCap)
}

// EraseSlot removes the entry at slot, if alive. OnErase fires before the
// key is cleared so observers can still read the pre-erase value.
func (ks *KeySet[K]) EraseSlot(slot uint32) bool {
	if !ks.IsAlive(slot) {
		return false
	}
	for _, o := range ks.observers {
		o.OnErase(slot)
	}
	key := ks.keys[slot]
	delete(ks.index, key)
	ks.alive[slot] = false
	var zero K
	ks.keys[slot] = zero
	ks.freeList = append(ks.freeList, slot)
	ks.aliveCount--
	return true
}

// Erase removes key if present.
func (ks *KeySet[K]) Erase(key K) bool {
	slot, ok := ks.index[key]
	if !ok {
		return false
	}
	return ks.EraseSlot(slot)
}

// Clear removes all entries, notifying observers once.
func (ks *KeySet[K]) Clear() {
	for slot := range ks.alive {
		ks.alive[slot] = false
	}
	ks.index = make(map[K]uint32)
	ks.freeList = ks.freeList[:0]
	for slot := uint32(0); int(slot) < len(ks.keys); slot++ {
		ks.freeList = append(ks.freeList, slot)
	}
	ks.aliveCount = 0
	for _, o := range ks.observers {
		o.OnClear()
	}
}

// MarkUpdated notifies observers that the value associated with slot
// changed in place (used by MapStorage.Set on an existing key).
func (ks *KeySet[K]) MarkUpdated(slot uint32) {
	for _, o := range ks.observers {
		o.OnUpdate(slot)
	}
}

// Handle returns a SlotHandle capturing slot's current generation.
func (ks *KeySet[K]) Handle(slot uint32) SlotHandle {
	return SlotHandle{Slot: slot, Generation: ks.generations[slot]}
}

func (h SlotHandle) String() string {
	return fmt.Sprintf("Slot(%d@gen%d)", h.Slot, h.Generation)
}
