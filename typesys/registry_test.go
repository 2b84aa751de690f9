package typesys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterningIsStructural(t *testing.T) {
	t.Parallel()

	a := Ts(Int)
	b := Ts(Int)
	require.Same(t, a, b, "two Ts(Int) calls must return the same interned pointer")

	c := Tsb("point", []TSField{{Name: "x", Meta: Ts(Float64)}, {Name: "y", Meta: Ts(Float64)}})
	d := Tsb("point", []TSField{{Name: "x", Meta: Ts(Float64)}, {Name: "y", Meta: Ts(Float64)}})
	require.Same(t, c, d)

	e := Tsb("point", []TSField{{Name: "y", Meta: Ts(Float64)}, {Name: "x", Meta: Ts(Float64)}})
	require.NotSame(t, c, e, "field order changes structural identity")
}

func TestWindowSchemaVariants(t *testing.T) {
	t.Parallel()

	fixed := Tsw(Int, 3, 2)
	require.False(t, fixed.IsDurationBased)
	require.Equal(t, int64(3), fixed.WindowSize)

	dur := TswDuration(Int, 1000, 500)
	require.True(t, dur.IsDurationBased)

	require.NotSame(t, fixed, dur)
}

func TestSignalIsSingleton(t *testing.T) {
	t.Parallel()
	require.Same(t, Signal(), Signal())
}

func TestTssRequiresHashableElement(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() {
		Tss(Ts(Float64)) // Float64 is not Hashable
	})
}

func TestRefTarget(t *testing.T) {
	t.Parallel()
	target := Tss(Ts(String))
	r1 := Ref(target)
	r2 := Ref(target)
	require.Same(t, r1, r2)
	require.Equal(t, target, r1.Element)
}
