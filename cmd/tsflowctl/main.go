// Command tsflowctl is tsflow's multi-subcommand operator CLI, grounded
// on AleutianLocal's cobra-based cmd/aleutian: a root command plus
// run/validate/graph-info/serve subcommands, each in its own file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	startTime int64
	endTime   int64
	period    int64
	verbose   bool
	addr      string

	rootCmd = &cobra.Command{
		Use:   "tsflowctl",
		Short: "Operate tsflow evaluation engine graphs",
		Long:  "tsflowctl runs, validates, and inspects tsflow dataflow graphs, and can serve their Prometheus metrics.",
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the demo counter graph between two simulation times",
		RunE:  runRun,
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Build the demo graph and verify its lifecycle transitions cleanly",
		RunE:  runValidate,
	}

	graphInfoCmd = &cobra.Command{
		Use:   "graph-info",
		Short: "Print node count and kinds for the demo graph",
		RunE:  runGraphInfo,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the demo graph continuously, exposing Prometheus metrics over HTTP",
		RunE:  runServe,
	}
)

func init() {
	runCmd.Flags().Int64Var(&startTime, "start", 0, "Simulation start time (nanoseconds)")
	runCmd.Flags().Int64Var(&endTime, "end", 100, "Simulation end time (nanoseconds)")
	runCmd.Flags().Int64Var(&period, "period", 10, "Tick period of the demo counter source (nanoseconds)")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")

	validateCmd.Flags().Int64Var(&period, "period", 10, "Tick period of the demo counter source (nanoseconds)")

	graphInfoCmd.Flags().Int64Var(&period, "period", 10, "Tick period of the demo counter source (nanoseconds)")

	serveCmd.Flags().Int64Var(&period, "period", 10, "Tick period of the demo counter source (nanoseconds)")
	serveCmd.Flags().StringVar(&addr, "addr", ":9090", "Address to serve /metrics on")
	serveCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")

	rootCmd.AddCommand(runCmd, validateCmd, graphInfoCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
