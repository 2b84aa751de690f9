package engine

import (
	"errors"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/internal/obslog"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
)

// LogObserver is a LifecycleObserver that writes one structured log line
// per graph start/stop and per node evaluation failure — a thin bridge
// between the engine's before/after hooks and obslog, so cmd/ entry
// points get visibility into a run without wiring their own observer.
type LogObserver struct {
	NopObserver
	log *obslog.Logger
}

// NewLogObserver wraps log; a nil log uses obslog.Default().
func NewLogObserver(log *obslog.Logger) *LogObserver {
	if log == nil {
		log = obslog.Default()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) AfterStartGraph(g *graph.Graph, err error) {
	if err != nil {
		o.log.Error("graph start failed", "error", err, "nodes", g.NodeCount())
		return
	}
	o.log.Info("graph started", "nodes", g.NodeCount())
}

func (o *LogObserver) AfterStopGraph(g *graph.Graph, err error) {
	if err != nil {
		o.log.Error("graph stop reported an error", "error", err, "nodes", g.NodeCount())
		return
	}
	o.log.Info("graph stopped", "nodes", g.NodeCount())
}

func (o *LogObserver) AfterNodeEvaluation(n *node.Node, t tstime.Time, err error) {
	if err == nil {
		return
	}
	var ne *engerr.NodeError
	if errors.As(err, &ne) {
		o.log.Warn("node evaluation error", "node", ne.SignatureName, "wiring_path", ne.WiringPath,
			"time", int64(t), "error", ne.ErrorMsg)
		return
	}
	o.log.Error("node evaluation fatal error", "node", n.Signature().Name, "time", int64(t), "error", err)
}
