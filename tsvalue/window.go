package tsvalue

import (
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// windowEntry pairs a pushed value with the time it entered the window,
// needed by the duration-based variant to know when to evict it.
type windowEntry struct {
	at    tstime.Time
	value any
}

// Window is the TSW specialisation: a bounded history of recent values,
// either tick-count bounded (fixed) or duration bounded. Pushing a new
// value may evict older ones; evicted values are exposed transiently for
// the remainder of the current cycle, then cleared by AfterEvaluation,
// mirroring the readable-once-after-erase contract used elsewhere in the
// storage layer.
type Window struct {
	base
	entries []windowEntry

	removedThisTick []any // values evicted during the push that just happened
	startTime       tstime.Time
	started         bool
}

// NewWindow allocates an empty Window over meta (meta.Kind must be
// typesys.TSW).
func NewWindow(meta *typesys.TSMeta) *Window {
	if meta.Kind != typesys.TSW {
		panic("tsvalue: NewWindow requires a typesys.TSW schema")
	}
	return &Window{base: newBase(meta)}
}

// Push appends value at time now, evicting whatever the window's bound
// disqualifies (oldest entries beyond WindowSize for the tick-count
// variant, or entries older than now-WindowSize for the duration variant).
func (w *Window) Push(now tstime.Time, value any) {
	if !w.started {
		w.startTime = now
		w.started = true
	}
	w.entries = append(w.entries, windowEntry{at: now, value: value})
	w.removedThisTick = w.removedThisTick[:0]

	if w.meta.IsDurationBased {
		cutoff := now.Add(tstime.Delta(-w.meta.WindowSize))
		i := 0
		for i < len(w.entries) && w.entries[i].at.Before(cutoff) {
			w.removedThisTick = append(w.removedThisTick, w.entries[i].value)
			i++
		}
		w.entries = w.entries[i:]
	} else {
		limit := int(w.meta.WindowSize)
		for len(w.entries) > limit {
			w.removedThisTick = append(w.removedThisTick, w.entries[0].value)
			w.entries = w.entries[1:]
		}
	}

	w.touch(now)
}

// Values returns the window's current contents, oldest first.
func (w *Window) Values() []any {
	out := make([]any, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.value
	}
	return out
}

// Len reports the number of values currently retained.
func (w *Window) Len() int { return len(w.entries) }

// Removed returns the values evicted by the most recent Push, readable
// until AfterEvaluation clears it.
func (w *Window) Removed() []any { return w.removedThisTick }

// AfterEvaluation clears the transient removed-this-tick list. Neither the
// graph nor the executor calls it; the window's owner calls it once per
// cycle.
func (w *Window) AfterEvaluation() {
	w.removedThisTick = nil
}

// AllValid differs by variant: a tick-count window is valid once it holds
// at least WindowMinSize entries; a duration window is valid once enough
// wall/simulation time has elapsed since the first push, regardless of
// how many entries that time happened to produce.
func (w *Window) AllValid(now tstime.Time) bool {
	if !w.valid || !w.started {
		return false
	}
	if w.meta.IsDurationBased {
		return now.Sub(w.startTime) >= tstime.Delta(w.meta.WindowMinSize)
	}
	return int64(len(w.entries)) >= w.meta.WindowMinSize
}
