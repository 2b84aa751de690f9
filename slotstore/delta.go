package slotstore

// SlotSet is a small set of slot indices, used for added/removed/updated
// delta membership where a full KeySet would be overkill.
type SlotSet map[uint32]struct{}

func NewSlotSet(slots ...uint32) SlotSet {
	s := make(SlotSet, len(slots))
	for _, sl := range slots {
		s[sl] = struct{}{}
	}
	return s
}

func (s SlotSet) Add(slot uint32)    { s[slot] = struct{}{} }
func (s SlotSet) Has(slot uint32) bool { _, ok := s[slot]; return ok }
func (s SlotSet) Remove(slot uint32) { delete(s, slot) }
func (s SlotSet) Len() int           { return len(s) }

// Slots returns the set's members; order is unspecified.
func (s SlotSet) Slots() []uint32 {
	out := make([]uint32, 0, len(s))
	for sl := range s {
		out = append(out, sl)
	}
	return out
}

// SetDelta is the per-tick change report for a TSS.
type SetDelta struct {
	Added            SlotSet
	Removed          SlotSet
	RemovedKeyHashes map[uint64]struct{}
	Cleared          bool
}

// NewSetDelta returns an empty delta.
func NewSetDelta() *SetDelta {
	return &SetDelta{Added: SlotSet{}, Removed: SlotSet{}, RemovedKeyHashes: map[uint64]struct{}{}}
}

// Reset clears the delta for the next cycle (called from an
// after_evaluation hook, per spec §4.4's "cleared via after_evaluation").
func (d *SetDelta) Reset() {
	d.Added = SlotSet{}
	d.Removed = SlotSet{}
	d.RemovedKeyHashes = map[uint64]struct{}{}
	d.Cleared = false
}

// RecordAdd notes a just-added slot. Per §9's open question, an
// add-then-remove-then-add of the same value within one cycle is tracked
// faithfully here (both events are visible mid-cycle); callers that only
// care about the end-of-cycle net effect should read Added/Removed after
// the full cycle completes, at which point symmetric pairs cancel out
// naturally because Remove deletes from Added if present (see RecordRemove).
func (d *SetDelta) RecordAdd(slot uint32) {
	d.Removed.Remove(slot)
	d.Added.Add(slot)
}

// RecordRemove notes a just-removed slot and its key hash (the hash
// survives even after the underlying slot is reused, which is why
// RemovedKeyHashes is tracked separately from Removed).
func (d *SetDelta) RecordRemove(slot uint32, keyHash uint64) {
	if d.Added.Has(slot) {
		d.Added.Remove(slot)
		return
	}
	d.Removed.Add(slot)
	d.RemovedKeyHashes[keyHash] = struct{}{}
}

// RecordClear notes a full clear.
func (d *SetDelta) RecordClear() {
	d.Added = SlotSet{}
	d.Removed = SlotSet{}
	d.Cleared = true
}

// DeltaVariantKind tags a MapDelta child entry.
type DeltaVariantKind uint8

const (
	DeltaNone DeltaVariantKind = iota
	DeltaSet
	DeltaMap
	DeltaBundleNav
	DeltaListNav
)

// DeltaVariant is a tagged union over a child delta, used by MapDelta's
// Children slice when dict values are themselves containers.
type DeltaVariant struct {
	Kind DeltaVariantKind
	Set  *SetDelta
	Map  *MapDelta
	// BundleNav/ListNav reuse Map's shape (index -> child delta) since a
	// navigation delta over a bundle/list is structurally the same as a
	// dict delta keyed by field index/position.
	Nav *MapDelta
}

// MapDelta is the per-tick change report for a TSD: a SetDelta over its
// keys, plus updated-in-place keys, plus recursive child deltas.
type MapDelta struct {
	SetDelta
	Updated  SlotSet
	Children map[uint32]DeltaVariant
}

// NewMapDelta returns an empty delta.
func NewMapDelta() *MapDelta {
	return &MapDelta{
		SetDelta: *NewSetDelta(),
		Updated:  SlotSet{},
		Children: map[uint32]DeltaVariant{},
	}
}

// Reset clears the delta for the next cycle.
func (d *MapDelta) Reset() {
	d.SetDelta.Reset()
	d.Updated = SlotSet{}
	d.Children = map[uint32]DeltaVariant{}
}

// RecordUpdate notes that the value at slot changed in place (dict_set on
// an existing key).
func (d *MapDelta) RecordUpdate(slot uint32) {
	if d.Added.Has(slot) {
		return // already reported as an add this cycle; no need to double-count
	}
	d.Updated.Add(slot)
}

// RecordChildDelta attaches a child container's delta for this tick.
func (d *MapDelta) RecordChildDelta(slot uint32, v DeltaVariant) {
	d.Children[slot] = v
}

// RebindDelta is the eagerly-computed delta produced when a REF retargets
// from one collection-valued output to another (spec §4.4/§4.6): the
// union of (new.full_contents minus old.full_contents) on Added and the
// inverse on Removed, presented as a single SetDelta so downstream
// readers see one combined change at the rebind time.
type RebindDelta struct {
	SetDelta
	ChangedIndices []int // for TSL/TSB rebinds: positions whose value differs
}

// NewRebindDelta builds the delta for a retarget from oldSlots to
// newSlots (both expressed as the set of slots alive in each target's
// KeySet at rebind time).
func NewRebindDelta(oldSlots, newSlots SlotSet) *RebindDelta {
	rd := &RebindDelta{SetDelta: *NewSetDelta()}
	for slot := range newSlots {
		if !oldSlots.Has(slot) {
			rd.Added.Add(slot)
		}
	}
	for slot := range oldSlots {
		if !newSlots.Has(slot) {
			rd.Removed.Add(slot)
		}
	}
	return rd
}
