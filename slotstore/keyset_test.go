package slotstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	inserts, erases, updates, clears int
	capacityEvents                  [][2]int
}

func (o *countingObserver) OnCapacity(old, new int) { o.capacityEvents = append(o.capacityEvents, [2]int{old, new}) }
func (o *countingObserver) OnInsert(uint32)          { o.inserts++ }
func (o *countingObserver) OnErase(uint32)           { o.erases++ }
func (o *countingObserver) OnUpdate(uint32)          { o.updates++ }
func (o *countingObserver) OnClear()                 { o.clears++ }

func TestKeySetInsertFindErase(t *testing.T) {
	t.Parallel()
	ks := NewKeySet[string]()
	obs := &countingObserver{}
	ks.AddObserver(obs)

	slotA, inserted := ks.Insert("a")
	require.True(t, inserted)
	slotAAgain, insertedAgain := ks.Insert("a")
	require.False(t, insertedAgain)
	require.Equal(t, slotA, slotAAgain)
	require.Equal(t, 1, ks.Len())

	found, ok := ks.Find("a")
	require.True(t, ok)
	require.Equal(t, slotA, found)

	require.True(t, ks.EraseSlot(slotA))
	require.Equal(t, 0, ks.Len())
	_, ok = ks.Find("a")
	require.False(t, ok)

	require.Equal(t, 1, obs.inserts)
	require.Equal(t, 1, obs.erases)
}

func TestKeySetSlotHandleValidity(t *testing.T) {
	t.Parallel()
	ks := NewKeySet[string]()
	slot, _ := ks.Insert("a")
	h := ks.Handle(slot)
	require.True(t, h.IsValid(ks))

	ks.EraseSlot(slot)
	require.False(t, h.IsValid(ks), "handle must be invalid once its slot is erased")

	// Reinsert into the same freed slot: generation bumps, old handle stays invalid.
	newSlot, _ := ks.Insert("b")
	require.Equal(t, slot, newSlot, "freed slot should be reused")
	require.False(t, h.IsValid(ks), "old handle must not become valid again after reuse")

	newHandle := ks.Handle(newSlot)
	require.True(t, newHandle.IsValid(ks))
}

func TestKeySetGrowthFiresCapacityBeforeInsert(t *testing.T) {
	t.Parallel()
	ks := NewKeySet[int]()
	obs := &countingObserver{}
	ks.AddObserver(obs)

	for i := 0; i < 10; i++ {
		ks.Insert(i)
	}
	require.NotEmpty(t, obs.capacityEvents)
	require.Equal(t, 10, ks.Len())
	require.GreaterOrEqual(t, ks.Capacity(), 10)
}

func TestKeySetFreeListReusesErasedSlots(t *testing.T) {
	t.Parallel()
	ks := NewKeySet[int]()
	s0, _ := ks.Insert(0)
	s1, _ := ks.Insert(1)
	ks.EraseSlot(s1)
	s2, _ := ks.Insert(2)
	require.Equal(t, s1, s2, "erased slot should be handed back out before growing")
	require.NotEqual(t, s0, s2)
}

func TestKeySetClear(t *testing.T) {
	t.Parallel()
	ks := NewKeySet[int]()
	ks.Insert(1)
	ks.Insert(2)
	obs := &countingObserver{}
	ks.AddObserver(obs)
	ks.Clear()
	require.Equal(t, 0, ks.Len())
	require.Equal(t, 1, obs.clears)
	_, ok := ks.Find(1)
	require.False(t, ok)
}
