package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
)

// EngineOptions configures an EvaluationEngine (grounded on the
// teacher's runtime.EngineOptions/DefaultEngineOptions shape, adapted to
// a single-threaded cooperative evaluator: there is no Workers/Streaming
// knob here since spec §5 mandates one goroutine driving evaluate_graph).
type EngineOptions struct {
	// RealTime selects RealTimeClock; false selects SimulationClock.
	RealTime bool
	// RealTimeCycle is the nominal cycle duration reported by
	// RealTimeClock.CycleTime when RealTime is set.
	RealTimeCycle time.Duration
	// StartTime seeds a SimulationClock's initial evaluation_time.
	StartTime tstime.Time
	// EnableStats turns on ExecutionStats bookkeeping.
	EnableStats bool
}

// DefaultEngineOptions mirrors the teacher's sensible-defaults
// constructor.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		RealTime:      false,
		RealTimeCycle: time.Millisecond,
		StartTime:     0,
		EnableStats:   true,
	}
}

// ExecutionStats tracks cycle-level performance counters (adapted from
// the teacher's ExecutionStats, minus the worker/kernel fields that no
// longer apply to a single-threaded node-kind evaluator).
type ExecutionStats struct {
	mu               sync.Mutex
	TotalCycles      int64
	TotalNodeEvals   int64
	AverageLatency   time.Duration
	totalLatency     time.Duration
}

func (s *ExecutionStats) recordCycle(d time.Duration, nodeEvals int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalCycles++
	s.TotalNodeEvals += nodeEvals
	s.totalLatency += d
	s.AverageLatency = s.totalLatency / time.Duration(s.TotalCycles)
}

// Snapshot returns a copy of the current counters, safe to read
// concurrently with ongoing evaluation.
func (s *ExecutionStats) Snapshot() ExecutionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ExecutionStats{TotalCycles: s.TotalCycles, TotalNodeEvals: s.TotalNodeEvals, AverageLatency: s.AverageLatency}
}

// EvaluationEngine owns a graph, its clock, and the life-cycle
// notifications executor.GraphExecutor.Run drives around each phase
// (spec §4.8, §4.9, §6). It is deliberately not itself a run loop: the
// run loop lives in executor.GraphExecutor, which calls Engine's
// methods once per cycle. Engine's job is wiring the clock mode,
// fanning life-cycle events out to observers, tracking stats, and
// exposing a cooperative stop request any node or external caller can
// raise.
type EvaluationEngine struct {
	Graph *graph.Graph
	Clock EngineEvaluationClock

	opts     EngineOptions
	observer *multiObserver
	stats    ExecutionStats
	stopReq  atomic.Bool
}

// NewEvaluationEngine builds the clock named by opts and wires it to g's
// observer hook fields so BeforeNodeEvaluation/AfterNodeEvaluation and
// the push-drain brackets reach every registered LifecycleObserver.
func NewEvaluationEngine(g *graph.Graph, opts EngineOptions, observers ...LifecycleObserver) *EvaluationEngine {
	var clock EngineEvaluationClock
	if opts.RealTime {
		clock = NewRealTimeClock(opts.RealTimeCycle)
	} else {
		clock = NewSimulationClock(opts.StartTime)
	}

	e := &EvaluationEngine{
		Graph:    g,
		Clock:    clock,
		opts:     opts,
		observer: &multiObserver{observers: observers},
	}

	g.OnBeforeNodeEval = func(n *node.Node, t tstime.Time) { e.observer.BeforeNodeEvaluation(n, t) }
	g.OnAfterNodeEval = func(n *node.Node, t tstime.Time, err error) { e.observer.AfterNodeEvaluation(n, t, err) }
	g.OnBeforePushDrain = func(t tstime.Time) { e.observer.BeforePushNodesEvaluation(g, t) }
	g.OnAfterPushDrain = func(t tstime.Time, err error) { e.observer.AfterPushNodesEvaluation(g, t, err) }

	return e
}

// AddObserver registers another LifecycleObserver to be notified
// alongside any already registered.
func (e *EvaluationEngine) AddObserver(o LifecycleObserver) {
	e.observer.observers = append(e.observer.observers, o)
}

func (e *EvaluationEngine) Stats() ExecutionStats { return e.stats.Snapshot() }

// RequestStop raises the cooperative stop flag executor.GraphExecutor.Run
// polls between cycles (spec §4.9).
func (e *EvaluationEngine) RequestStop() { e.stopReq.Store(true) }

// StopRequested reports whether RequestStop has been called.
func (e *EvaluationEngine) StopRequested() bool { return e.stopReq.Load() }

// StartGraph brackets graph.Initialise+Start with the matching
// LifecycleObserver notifications.
func (e *EvaluationEngine) StartGraph() error {
	e.observer.BeforeStartGraph(e.Graph)
	err := e.initAndStart()
	e.observer.AfterStartGraph(e.Graph, err)
	return err
}

func (e *EvaluationEngine) initAndStart() error {
	if err := e.Graph.Initialise(); err != nil {
		return err
	}
	return e.Graph.Start()
}

// StopGraph brackets graph.Stop with the matching notifications.
func (e *EvaluationEngine) StopGraph() error {
	e.observer.BeforeStopGraph(e.Graph)
	err := e.Graph.Stop()
	e.observer.AfterStopGraph(e.Graph, err)
	return err
}

// RunCycle evaluates one cycle at the clock's current evaluation_time,
// brackets it with BeforeGraphEvaluation/AfterGraphEvaluation, and
// records ExecutionStats when enabled.
func (e *EvaluationEngine) RunCycle() error {
	now := e.Clock.EvaluationTime()
	e.observer.BeforeGraphEvaluation(e.Graph, now)

	start := time.Now()
	err := e.Graph.EvaluateGraph(e.Clock)
	elapsed := time.Since(start)

	if e.opts.EnableStats {
		e.stats.recordCycle(elapsed, int64(e.Graph.NodeCount()))
	}
	e.observer.AfterGraphEvaluation(e.Graph, now, err)
	return err
}
