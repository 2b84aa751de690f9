// Package tstime defines the engine's notion of time: an absolute,
// signed, nanosecond-resolution timestamp and the duration type derived
// from it, plus the two sentinels used throughout scheduling.
package tstime

import "math"

// Time is engine_time_t: an absolute nanosecond count since an
// implementation-defined epoch (we use the Unix epoch for RealTime mode;
// Simulation mode is free to start anywhere, including 0).
type Time int64

// Delta is engine_time_delta_t: a signed nanosecond duration.
type Delta int64

const (
	// MinDT marks a schedule slot that has never been set ("not
	// scheduled"). It compares less than every real timestamp, so a
	// schedule-vector scan that looks for "the earliest scheduled time"
	// must skip MinDT entries explicitly rather than relying on min().
	MinDT Time = math.MinInt64

	// MaxDT marks a schedule slot that is scheduled for no time at all
	// ("never-scheduled" going forward). The graph resets a node's
	// slot to MaxDT immediately after consuming it so that a node which
	// does not re-schedule itself this cycle drops out of the schedule
	// scan on the next one.
	MaxDT Time = math.MaxInt64
)

// Add returns t advanced by d.
func (t Time) Add(d Delta) Time { return t + Time(d) }

// Sub returns the duration between t and u (t - u).
func (t Time) Sub(u Time) Delta { return Delta(t - u) }

// Before reports t < u, treating MinDT as always-before and MaxDT as
// always-after real timestamps (both sentinels are integer extremes, so
// ordinary integer comparison already gives this for free).
func (t Time) Before(u Time) bool { return t < u }

// IsScheduled reports whether t is a real schedule (neither sentinel).
func (t Time) IsScheduled() bool { return t != MinDT && t != MaxDT }
