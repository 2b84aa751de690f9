package engerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFatalWrapsSentinel(t *testing.T) {
	t.Parallel()
	err := Fatal(ErrScheduleInPast, "node \"add1\"")
	require.True(t, errors.Is(err, ErrScheduleInPast))
	require.Contains(t, err.Error(), "add1")
}

func TestNodeErrorFormatting(t *testing.T) {
	t.Parallel()
	ne := New("add1", "adder", "root.add1", errors.New("boom"))
	require.Equal(t, "add1 (adder): boom", ne.Error())

	ne.WithContext("retry", "false")
	require.Equal(t, "false", ne.AdditionalContext["retry"])
}

func TestBackTraceStringBoldsActiveArgs(t *testing.T) {
	t.Parallel()
	bt := &BackTrace{Root: &BackTraceNode{
		RuntimePath: "root.add1",
		Args: []BackTraceArg{
			{Name: "x", Value: "10", Active: true},
			{Name: "y", Value: "5"},
		},
	}}
	out := bt.String()
	require.Contains(t, out, "**x**")
	require.NotContains(t, out, "**y**")
}

func TestTruncateClipsLongValues(t *testing.T) {
	t.Parallel()
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	out := Truncate(string(long))
	require.LessOrEqual(t, len(out), maxValueLen)
}
