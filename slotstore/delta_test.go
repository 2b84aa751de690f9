package slotstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetDeltaAddRemoveSameCycleCancels(t *testing.T) {
	t.Parallel()
	d := NewSetDelta()
	d.RecordAdd(5)
	require.True(t, d.Added.Has(5))
	d.RecordRemove(5, 0xdead)
	require.False(t, d.Added.Has(5), "remove of a same-cycle add should cancel the add")
	require.False(t, d.Removed.Has(5), "and must not appear as a remove either")
}

func TestSetDeltaRemoveThenReAddKeepsBothVisible(t *testing.T) {
	t.Parallel()
	d := NewSetDelta()
	d.RecordRemove(7, 0xbeef)
	require.True(t, d.Removed.Has(7))
	d.RecordAdd(7)
	require.True(t, d.Added.Has(7))
	require.False(t, d.Removed.Has(7), "re-add should drop the remove that preceded it")
}

func TestRebindDeltaCombinesAddsAndRemoves(t *testing.T) {
	t.Parallel()
	old := NewSlotSet(1, 2)
	next := NewSlotSet(2, 3)
	rd := NewRebindDelta(old, next)
	require.True(t, rd.Added.Has(3))
	require.False(t, rd.Added.Has(2))
	require.True(t, rd.Removed.Has(1))
	require.False(t, rd.Removed.Has(2))
}

func TestMapDeltaRecordUpdateSkipsSameCycleAdd(t *testing.T) {
	t.Parallel()
	d := NewMapDelta()
	d.RecordAdd(1)
	d.RecordUpdate(1)
	require.False(t, d.Updated.Has(1), "a key added this cycle should not also show as updated")

	d2 := NewMapDelta()
	d2.RecordUpdate(2)
	require.True(t, d2.Updated.Has(2))
}
