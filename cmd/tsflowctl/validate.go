package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbl8/tsflow/engine"
	"github.com/sbl8/tsflow/examplegraph"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/tstime"
)

// runValidate builds the demo graph and drives it through a single
// start/stop cycle without evaluating any ticks, confirming the
// lifecycle state machine reaches StateStopped cleanly.
func runValidate(cmd *cobra.Command, args []string) error {
	g, _ := examplegraph.BuildCounter(period)

	eng := engine.NewEvaluationEngine(g, engine.DefaultEngineOptions())
	if err := g.ScheduleNode(0, tstime.Time(0), eng.Clock); err != nil {
		return fmt.Errorf("tsflowctl validate: seed schedule: %w", err)
	}

	if err := eng.StartGraph(); err != nil {
		return fmt.Errorf("tsflowctl validate: start: %w", err)
	}
	if err := eng.StopGraph(); err != nil {
		return fmt.Errorf("tsflowctl validate: stop: %w", err)
	}

	if g.State() != graph.StateStopped {
		return fmt.Errorf("tsflowctl validate: graph left in state %v, want %v", g.State(), graph.StateStopped)
	}

	cmd.Println("graph is valid: 2 nodes, lifecycle start/stop clean")
	return nil
}
