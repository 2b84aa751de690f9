// Package engerr defines the engine's error taxonomy: fatal programmer
// errors that must never be caught, the per-node evaluation error format
// that crosses the executor boundary, and the activation back-trace
// renderer attached to it.
package engerr

import (
	"errors"
	"fmt"
)

// Sentinel programmer errors — fatal, uncatchable conditions per spec §7.
// Always wrapped with fmt.Errorf("...: %w", ...) for context; callers
// should errors.Is against these, never string-match the message.
var (
	ErrScheduleInPast       = errors.New("engerr: schedule_node called with a time before evaluation_time")
	ErrOutOfOrderLifecycle  = errors.New("engerr: lifecycle method called out of order")
	ErrIncompatibleBind     = errors.New("engerr: structurally incompatible edge bind")
	ErrDuplicateComponentID = errors.New("engerr: duplicate component recordable id")
	ErrClosedTSDAccess      = errors.New("engerr: access to a missing key on a closed TSD")
)

// Fatal wraps one of the sentinels above with operation-specific context.
// Fatal errors are programmer errors: they are never passed to a node's
// capture_exception path and always terminate the run.
func Fatal(sentinel error, context string) error {
	return fmt.Errorf("%s: %w", context, sentinel)
}

// NodeError is the error format that crosses the executor boundary when
// a node's eval fails and the node does not capture exceptions, or that
// is written into a node's error output when it does (spec §6).
type NodeError struct {
	SignatureName       string
	Label               string
	WiringPath          string
	ErrorMsg            string
	StackTrace          string
	ActivationBackTrace *BackTrace
	AdditionalContext   map[string]string
}

func (e *NodeError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s (%s): %s", e.SignatureName, e.Label, e.ErrorMsg)
	}
	return fmt.Sprintf("%s: %s", e.SignatureName, e.ErrorMsg)
}

// New builds a NodeError from a live failure, wrapping cause's message.
func New(signatureName, label, wiringPath string, cause error) *NodeError {
	return &NodeError{
		SignatureName: signatureName,
		Label:         label,
		WiringPath:    wiringPath,
		ErrorMsg:      cause.Error(),
	}
}

// WithBackTrace attaches the activation back-trace and returns e, for
// chaining at the construction site.
func (e *NodeError) WithBackTrace(bt *BackTrace) *NodeError {
	e.ActivationBackTrace = bt
	return e
}

// WithContext attaches one key/value of additional context.
func (e *NodeError) WithContext(key, value string) *NodeError {
	if e.AdditionalContext == nil {
		e.AdditionalContext = map[string]string{}
	}
	e.AdditionalContext[key] = value
	return e
}
