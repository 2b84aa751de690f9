package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sbl8/tsflow/engine"
	"github.com/sbl8/tsflow/examplegraph"
	"github.com/sbl8/tsflow/executor"
	"github.com/sbl8/tsflow/internal/obslog"
	"github.com/sbl8/tsflow/tstime"
)

// runServe runs the demo graph under a real-time clock indefinitely,
// serving its Prometheus metrics over HTTP until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	level := obslog.LevelInfo
	if verbose {
		level = obslog.LevelDebug
	}
	logger := obslog.New(obslog.Config{Level: level, Service: "tsflowctl"})

	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	g, _ := examplegraph.BuildCounter(period)
	opts := engine.DefaultEngineOptions()
	opts.RealTime = true
	opts.RealTimeCycle = time.Millisecond

	eng := engine.NewEvaluationEngine(g, opts, engine.NewLogObserver(logger), metrics)
	if err := g.ScheduleNode(0, tstime.Time(0), eng.Clock); err != nil {
		return fmt.Errorf("tsflowctl serve: seed schedule: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	runErrCh := make(chan error, 1)
	go func() {
		x := executor.New(eng)
		runErrCh <- x.Run(tstime.Time(0), tstime.MaxDT)
	}()

	cmd.Printf("serving metrics on %s/metrics\n", addr)

	select {
	case <-sigCh:
		eng.RequestStop()
		_ = srv.Close()
		<-runErrCh
		return nil
	case err := <-runErrCh:
		_ = srv.Close()
		return err
	case err := <-errCh:
		eng.RequestStop()
		<-runErrCh
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("tsflowctl serve: http: %w", err)
		}
		return nil
	}
}
