package tsvalue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

func scalarFactory(meta *typesys.TSMeta) Value {
	switch meta.Kind {
	case typesys.TS:
		return NewTS(meta)
	case typesys.TSB:
		return NewBundle(meta, scalarFactory)
	case typesys.TSL:
		return NewList(meta, scalarFactory)
	case typesys.REF:
		return NewRef(meta)
	default:
		panic("tsvalue_test: unsupported kind in scalarFactory")
	}
}

func TestTSSetAndModified(t *testing.T) {
	t.Parallel()
	ts := NewTS(typesys.Ts(typesys.Int))
	require.False(t, ts.Valid())

	ts.Set(10, 42)
	require.True(t, ts.Valid())
	require.Equal(t, 42, ts.Value())
	require.True(t, ts.Modified(10))
	require.False(t, ts.Modified(11))
}

func TestSignalTick(t *testing.T) {
	t.Parallel()
	s := NewSignal()
	require.False(t, s.Valid())
	s.Tick(5)
	require.True(t, s.Valid())
	require.Equal(t, tstime.Time(5), s.LastModifiedTime())
}

func TestBundleSetRoundTrip(t *testing.T) {
	t.Parallel()
	meta := typesys.Tsb("point", []typesys.TSField{
		{Name: "x", Meta: typesys.Ts(typesys.Int)},
		{Name: "y", Meta: typesys.Ts(typesys.Int)},
	})
	b := NewBundle(meta, scalarFactory)
	err := b.Set(1, map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"x": 1, "y": 2}, b.Value())
	require.True(t, b.AllValid(1))
}

func TestListFixedAndDynamic(t *testing.T) {
	t.Parallel()
	elem := typesys.Ts(typesys.Int)

	fixed := NewList(typesys.Tsl(elem, 3), scalarFactory)
	require.Equal(t, 3, fixed.Len())
	require.False(t, fixed.IsDynamic())
	require.Error(t, func() error { _, err := fixed.Append(1); return err }())

	dyn := NewList(typesys.Tsl(elem, 0), scalarFactory)
	require.True(t, dyn.IsDynamic())
	idx, err := dyn.Append(1)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, 1, dyn.Len())
	require.NoError(t, dyn.RemoveAt(2, 0))
	require.Equal(t, 0, dyn.Len())
	require.Error(t, dyn.RemoveAt(3, 0))
}

func TestSetAddRemoveDelta(t *testing.T) {
	t.Parallel()
	s := NewSet(typesys.Tss(typesys.Ts(typesys.String)))

	require.True(t, s.Add(1, "a"))
	require.False(t, s.Add(1, "a"), "duplicate add is a no-op")
	require.Equal(t, []any{"a"}, s.Added())

	s.AfterEvaluation()
	require.True(t, s.Remove(2, "a"))
	require.Equal(t, []any{"a"}, s.Removed(), "removed value must be observable even though its slot is cleared")
	require.False(t, s.Contains("a"))

	s.AfterEvaluation()
	require.Empty(t, s.Removed(), "removed list resets after the cycle ends")
}

func TestDictCreateSetRemove(t *testing.T) {
	t.Parallel()
	valueSchema := typesys.Ts(typesys.Int)
	d := NewDict(typesys.Tsd(typesys.String, valueSchema), scalarFactory)

	d.DictSet(1, "k", func(v Value) { v.(*TS).Set(1, 7) })
	child, ok := d.Get("k")
	require.True(t, ok)
	require.Equal(t, 7, child.(*TS).Value())
	require.Equal(t, 1, d.Len())

	d.DictSet(2, "k", func(v Value) { v.(*TS).Set(2, 9) })
	require.True(t, d.Delta().Added.Has(0), "key added and updated within the same cycle still nets to an add")
	require.False(t, d.Delta().Updated.Has(0), "no double-count once the add already covers this cycle")

	require.True(t, d.DictRemove(3, "k"))
	_, stillThere := d.Get("k")
	require.True(t, stillThere)
	d.AfterEvaluation()
	require.Equal(t, 0, d.Len())
}

func TestDictAddedRemovedKeys(t *testing.T) {
	t.Parallel()
	valueSchema := typesys.Ts(typesys.Int)
	d := NewDict(typesys.Tsd(typesys.String, valueSchema), scalarFactory)

	d.DictSet(1, "x", func(v Value) { v.(*TS).Set(1, 1) })
	require.ElementsMatch(t, []any{"x"}, d.Added())
	d.AfterEvaluation()

	d.DictRemove(2, "x")
	require.ElementsMatch(t, []any{"x"}, d.Removed())
	d.AfterEvaluation()
	require.Empty(t, d.Removed())
}

func TestWindowFixedEviction(t *testing.T) {
	t.Parallel()
	meta := typesys.Tsw(typesys.Int, 2, 2)
	w := NewWindow(meta)

	w.Push(1, 10)
	require.False(t, w.AllValid(1))
	w.Push(2, 20)
	require.True(t, w.AllValid(2))
	w.Push(3, 30)
	require.Equal(t, []any{20, 30}, w.Values())
	require.Equal(t, []any{10}, w.Removed())

	w.AfterEvaluation()
	require.Empty(t, w.Removed())
}

func TestWindowDurationEviction(t *testing.T) {
	t.Parallel()
	meta := typesys.TswDuration(typesys.Int, 10, 3)
	w := NewWindow(meta)

	w.Push(0, "a")
	require.False(t, w.AllValid(0))
	w.Push(4, "b")
	require.True(t, w.AllValid(4), "duration window is valid once min_size time has elapsed since start")
	w.Push(11, "c")
	require.Equal(t, []any{"b", "c"}, w.Values(), "entries older than now-window_size are evicted")
	require.Equal(t, []any{"a"}, w.Removed())
}

func TestRefBindUnbind(t *testing.T) {
	t.Parallel()
	target := NewTS(typesys.Ts(typesys.Int))
	target.Set(1, 5)

	r := NewRef(typesys.Ref(typesys.Ts(typesys.Int)))
	require.False(t, r.IsBound())
	require.False(t, r.AllValid(1))

	r.Bind(2, target)
	require.True(t, r.IsBound())
	require.True(t, r.IsPeered())
	require.True(t, r.AllValid(2))

	r.Unbind(3)
	require.False(t, r.IsBound())
}
