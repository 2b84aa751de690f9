package tsvalue

import (
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// Signal is a time series carrying only timestamps, no payload: ticking
// it is the entire operation.
type Signal struct{ base }

// NewSignal allocates an unticked Signal.
func NewSignal() *Signal {
	return &Signal{base: newBase(typesys.Signal())}
}

// Tick marks the signal fired at time now.
func (s *Signal) Tick(now tstime.Time) { s.touch(now) }

func (s *Signal) AllValid(tstime.Time) bool { return s.valid }
