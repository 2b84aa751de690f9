// Package tsflow implements a deterministic, forward-only functional
// reactive computation engine for time-series dataflow graphs.
//
// tsflow evaluates graphs of nodes connected by typed time-series
// values (scalars, bundles, lists, dicts, sets, windows, and
// references) under a single forward-only evaluation clock: no node
// is ever re-evaluated at a time earlier than one it has already seen,
// and a graph can run under either a deterministic simulation clock
// (replayable, test-friendly) or a real-time wall-clock that blocks
// until the next scheduled activation.
//
// # Architecture Overview
//
// The engine is organized as a set of small, independently testable
// packages:
//
//   - typesys: the static type-metadata system (TSMeta/TypeMeta) shared
//     by every time-series value kind.
//   - slotstore: slot-stable storage primitives (generation-counted
//     handles, deferred-erase maps, per-tick add/remove/update deltas)
//     used by the set/dict/list value kinds.
//   - tsvalue: the time-series value kinds themselves (TS, TSB, TSL,
//     TSD, TSS, TSW, REF) and their observer-notification protocol.
//   - tslink: structural binding between an output value and the nodes
//     that observe it.
//   - node: the node model — signatures, lifecycle state machine, and
//     the eval contract nodes implement.
//   - graph: the dataflow graph itself — construction, binding,
//     scheduling, and evaluate_graph.
//   - nested: graph-valued node kinds (map, reduce, switch, component,
//     try_except, mesh) that each own a private sub-graph.
//   - engine: evaluation clocks (simulation and real-time), the
//     lifecycle-observer protocol, and the evaluation engine that
//     drives a graph's start/stop/run-cycle lifecycle.
//   - executor: the top-level run loop driving an engine across a
//     simulation time range.
//   - engerr: structured node errors with wiring-path and activation
//     back-trace context.
//
// # Basic Usage
//
//	g, sink := examplegraph.BuildCounter(10)
//	eng := engine.NewEvaluationEngine(g, engine.DefaultEngineOptions())
//	_ = g.ScheduleNode(0, tstime.Time(0), eng.Clock)
//	err := executor.New(eng).Run(tstime.Time(0), tstime.Time(100))
//
// For more information, see the accompanying specification documents
// in the repository root.
package tsflow
