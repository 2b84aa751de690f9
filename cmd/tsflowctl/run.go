package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sbl8/tsflow/engine"
	"github.com/sbl8/tsflow/examplegraph"
	"github.com/sbl8/tsflow/executor"
	"github.com/sbl8/tsflow/internal/obslog"
	"github.com/sbl8/tsflow/tstime"
)

func runRun(cmd *cobra.Command, args []string) error {
	level := obslog.LevelInfo
	if verbose {
		level = obslog.LevelDebug
	}
	logger := obslog.New(obslog.Config{Level: level, Service: "tsflowctl"})

	g, sink := examplegraph.BuildCounter(period)

	eng := engine.NewEvaluationEngine(g, engine.DefaultEngineOptions(),
		engine.NewLogObserver(logger), engine.NewMetrics(prometheus.NewRegistry()))

	if err := g.ScheduleNode(0, tstime.Time(startTime), eng.Clock); err != nil {
		return fmt.Errorf("tsflowctl run: seed schedule: %w", err)
	}

	x := executor.New(eng)
	if err := x.Run(tstime.Time(startTime), tstime.Time(endTime)); err != nil {
		return fmt.Errorf("tsflowctl run: %w", err)
	}

	cmd.Printf("final counter value: %v\n", sink.LastValue())
	return nil
}
