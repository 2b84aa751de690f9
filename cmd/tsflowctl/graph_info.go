package main

import (
	"github.com/spf13/cobra"

	"github.com/sbl8/tsflow/examplegraph"
)

func runGraphInfo(cmd *cobra.Command, args []string) error {
	g, _ := examplegraph.BuildCounter(period)

	cmd.Printf("nodes: %d\n", g.NodeCount())
	for i := 0; i < g.NodeCount(); i++ {
		n := g.NodeAt(i)
		cmd.Printf("  [%d] %s (kind=%s)\n", i, n.Signature().Name, n.Kind())
	}
	return nil
}
