package tsvalue

import (
	"hash/fnv"
	"fmt"

	"github.com/sbl8/tsflow/slotstore"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// Set is a keyed collection with per-tick add/remove deltas, backed by a
// slot-stable KeySet so that element identity (slot) survives other
// mutations within the same cycle.
type Set struct {
	base
	keys          *slotstore.KeySet[any]
	delta         *slotstore.SetDelta
	removedValues map[uint32]any // transient: removed-this-tick values, keyed by their now-dead slot
}

// NewSet allocates an empty Set over the given element schema.
func NewSet(meta *typesys.TSMeta) *Set {
	if meta.Kind != typesys.TSS {
		panic("tsvalue: NewSet requires a typesys.TSS schema")
	}
	return &Set{
		base:          newBase(meta),
		keys:          slotstore.NewKeySet[any](),
		delta:         slotstore.NewSetDelta(),
		removedValues: map[uint32]any{},
	}
}

// Add inserts key if absent, recording the add in this tick's delta.
func (s *Set) Add(now tstime.Time, key any) bool {
	_, inserted := s.keys.Insert(key)
	if inserted {
		slot, _ := s.keys.Find(key)
		s.delta.RecordAdd(slot)
		s.touch(now)
	}
	return inserted
}

// Remove erases key if present, recording the removal in this tick's
// delta keyed by a stable hash of the removed value (so the delta remains
// meaningful even after the slot is reused).
func (s *Set) Remove(now tstime.Time, key any) bool {
	slot, ok := s.keys.Find(key)
	if !ok {
		return false
	}
	s.removedValues[slot] = key
	s.keys.EraseSlot(slot)
	s.delta.RecordRemove(slot, hashAny(key))
	s.touch(now)
	return true
}

// Clear empties the set and marks the delta as a full clear.
func (s *Set) Clear(now tstime.Time) {
	s.keys.Clear()
	s.delta.RecordClear()
	s.touch(now)
}

// Contains reports whether key is currently a member.
func (s *Set) Contains(key any) bool {
	_, ok := s.keys.Find(key)
	return ok
}

// Len reports the current cardinality.
func (s *Set) Len() int { return s.keys.Len() }

// AllValues returns every currently live member, used by the REF rebind
// path to diff one collection-valued target against another by value
// rather than by slot (slot numbers are meaningless across two distinct
// Set instances).
func (s *Set) AllValues() []any {
	out := make([]any, 0, s.keys.Len())
	for slot := uint32(0); int(slot) < s.keys.Capacity(); slot++ {
		if s.keys.IsAlive(slot) {
			out = append(out, s.keys.KeyAt(slot))
		}
	}
	return out
}

// Delta returns this tick's SetDelta (added/removed slots).
func (s *Set) Delta() *slotstore.SetDelta { return s.delta }

// Added returns the keys added this tick.
func (s *Set) Added() []any {
	out := make([]any, 0, s.delta.Added.Len())
	for _, slot := range s.delta.Added.Slots() {
		out = append(out, s.keys.KeyAt(slot))
	}
	return out
}

// Removed returns the keys removed this tick. Values are captured at
// removal time since the underlying slot's key is cleared on erase.
func (s *Set) Removed() []any {
	out := make([]any, 0, s.delta.Removed.Len())
	for _, slot := range s.delta.Removed.Slots() {
		if v, ok := s.removedValues[slot]; ok {
			out = append(out, v)
		}
	}
	return out
}

// AfterEvaluation resets the per-tick delta. Neither the graph nor the
// executor calls it; the value's owner calls it once per cycle after all
// downstream readers have run.
func (s *Set) AfterEvaluation() {
	s.delta.Reset()
	s.removedValues = map[uint32]any{}
}

func (s *Set) AllValid(tstime.Time) bool { return s.valid }

func hashAny(v any) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v", v)
	return h.Sum64()
}
