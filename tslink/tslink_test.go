package tslink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

type fakeObserver struct{ notified []tstime.Time }

func (f *fakeObserver) OnNotify(t tstime.Time) { f.notified = append(f.notified, t) }

func TestTSLinkBindUnbindLeavesObserverListUnchanged(t *testing.T) {
	t.Parallel()
	out := tsvalue.NewTS(typesys.Ts(typesys.Int))
	owner := &fakeObserver{}
	l := NewTSLink(owner)

	before := out.Observers().Len()
	l.Bind(out)
	require.Equal(t, before+1, out.Observers().Len())
	l.Unbind()
	require.Equal(t, before, out.Observers().Len())
}

func TestTSLinkNotifiesOwnerOnTick(t *testing.T) {
	t.Parallel()
	out := tsvalue.NewTS(typesys.Ts(typesys.Int))
	owner := &fakeObserver{}
	l := NewTSLink(owner)
	l.Bind(out)

	out.Set(5, 1)
	require.Equal(t, []tstime.Time{5}, owner.notified)

	l.MakePassive()
	out.Set(6, 2)
	require.Equal(t, []tstime.Time{5}, owner.notified, "passive link must not forward notifications")

	l.MakeActive()
	out.Set(7, 3)
	require.Equal(t, []tstime.Time{5, 7}, owner.notified)
}

func TestBindPeersBundleFields(t *testing.T) {
	t.Parallel()
	meta := typesys.Tsb("pair", []typesys.TSField{
		{Name: "a", Meta: typesys.Ts(typesys.Int)},
		{Name: "b", Meta: typesys.Ts(typesys.Int)},
	})
	newChild := func(m *typesys.TSMeta) tsvalue.Value { return tsvalue.NewTS(m) }
	out := tsvalue.NewBundle(meta, newChild)
	in := tsvalue.NewBundle(meta, newChild)
	owner := &fakeObserver{}

	links, err := Bind(owner, in, out)
	require.NoError(t, err)
	require.Len(t, links, 3, "one container-level link plus one per field")

	out.FieldAt(0).(*tsvalue.TS).Set(1, 42)
	require.Equal(t, []tstime.Time{1}, owner.notified)
}

func TestTSRefTargetLinkRebindProducesSetDelta(t *testing.T) {
	t.Parallel()
	elemSchema := typesys.Ts(typesys.String)
	a := tsvalue.NewSet(typesys.Tss(elemSchema))
	a.Add(1, "a")
	a.Add(1, "b")
	b := tsvalue.NewSet(typesys.Tss(elemSchema))
	b.Add(1, "b")
	b.Add(1, "c")

	ref := tsvalue.NewRef(typesys.Ref(typesys.Tss(elemSchema)))
	owner := &fakeObserver{}
	resolve := func(r *tsvalue.Ref) tsvalue.Value { return r.Target() }
	link := NewTSRefTargetLink(owner, ref, resolve)

	ref.Bind(1, a)
	require.Equal(t, a, link.Target())

	ref.Bind(2, b)
	require.Equal(t, b, link.Target())
	d := link.Delta()
	require.NotNil(t, d)
	require.ElementsMatch(t, []any{"c"}, d.Added)
	require.ElementsMatch(t, []any{"a"}, d.Removed)

	link.AfterEvaluation()
	require.Nil(t, link.Delta())
}
