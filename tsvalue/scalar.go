package tsvalue

import (
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
)

// TS is a scalar time series: one payload value plus the common
// (last_modified_time, valid) bookkeeping in base.
type TS struct {
	base
	value any
}

// NewTS allocates an unset TS over the given scalar schema.
func NewTS(meta *typesys.TSMeta) *TS {
	if meta.Kind != typesys.TS {
		panic("tsvalue: NewTS requires a typesys.TS schema")
	}
	return &TS{base: newBase(meta)}
}

// Value returns the current payload; callers must check Valid() first.
func (t *TS) Value() any { return t.value }

// Set writes a new value at time now and notifies subscribers.
func (t *TS) Set(now tstime.Time, v any) {
	t.value = v
	t.touch(now)
}

// AllValid for a scalar is just Valid().
func (t *TS) AllValid(tstime.Time) bool { return t.valid }

// DeltaValue for a scalar TS is the value itself when modified this tick,
// mirroring ts_ops.delta_value for the non-container kinds (there is no
// separate "previous minus current" computation at this layer).
func (t *TS) DeltaValue(now tstime.Time) (any, bool) {
	if !t.Modified(now) {
		return nil, false
	}
	return t.value, true
}
