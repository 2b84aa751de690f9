package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGraphInfoListsTwoNodes(t *testing.T) {
	out, err := execute(t, "graph-info", "--period", "5")
	require.NoError(t, err)
	require.Contains(t, out, "nodes: 2")
	require.Contains(t, out, "counter_source")
	require.Contains(t, out, "counter_sink")
}

func TestValidateReportsCleanLifecycle(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	require.Contains(t, out, "graph is valid")
}

func TestRunProducesFinalCounterValue(t *testing.T) {
	out, err := execute(t, "run", "--start", "0", "--end", "30", "--period", "10")
	require.NoError(t, err)
	require.Contains(t, out, "final counter value:")
}
