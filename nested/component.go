package nested

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/graph"
	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tstime"
	"github.com/sbl8/tsflow/typesys"
	"github.com/sbl8/tsflow/tsvalue"
)

// ComponentRegistry is the process-wide GlobalState keyed by
// component.recordable_id (spec §5), guarding against two live
// components claiming the same id.
type ComponentRegistry struct {
	mu  sync.Mutex
	ids map[string]bool
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{ids: map[string]bool{}}
}

var globalComponentRegistry = NewComponentRegistry()

// GlobalComponentRegistry returns the process-wide registry used by
// component nodes that don't supply their own (tests supply their own to
// avoid cross-test interference).
func GlobalComponentRegistry() *ComponentRegistry { return globalComponentRegistry }

// Claim registers id, failing if already held.
func (r *ComponentRegistry) Claim(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ids[id] {
		return engerr.Fatal(engerr.ErrDuplicateComponentID, id)
	}
	r.ids[id] = true
	return nil
}

// Release frees id for reuse (called on component teardown).
func (r *ComponentRegistry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}

// IDArgs resolves a component's recordable id. Resolve is retried once per
// cycle by Wire until it reports ready (spec §4.6: "the id must resolve
// deterministically before the sub-graph is wired"; §8 scenario 6: wiring
// is deferred until every referenced time-series arg is valid).
type IDArgs interface {
	Resolve(now tstime.Time) (id string, ready bool, err error)
}

// LiteralID is an IDArgs that always resolves to a fixed id (no
// placeholder template, nothing to defer on).
type LiteralID string

func (l LiteralID) Resolve(tstime.Time) (string, bool, error) { return string(l), true, nil }

// scalarValue is implemented by the Value kinds whose current payload can
// be stringified into an id, e.g. *tsvalue.TS.
type scalarValue interface {
	Value() any
}

// IDTemplate resolves a component's recordable id from a {name}-style
// template (spec §6): each {name} placeholder is substituted first
// against scalarArgs (plain Go values, always ready), then against
// tsArgs (current-tick time-series values, ready only once Valid). An
// empty "{}" placeholder is always rejected. Resolve reports ready=false,
// err=nil (not an error) while a referenced TS arg is not yet valid, so
// Wire can retry on a later cycle.
type IDTemplate struct {
	template   string
	scalarArgs map[string]any
	tsArgs     map[string]tsvalue.Value
}

// NewIDTemplate builds an IDTemplate. Either args map may be nil.
func NewIDTemplate(template string, scalarArgs map[string]any, tsArgs map[string]tsvalue.Value) *IDTemplate {
	return &IDTemplate{template: template, scalarArgs: scalarArgs, tsArgs: tsArgs}
}

func (t *IDTemplate) Resolve(now tstime.Time) (string, bool, error) {
	var out strings.Builder
	rest := t.template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:open])
		rest = rest[open+1:]

		closeIdx := strings.IndexByte(rest, '}')
		if closeIdx < 0 {
			return "", false, fmt.Errorf("nested.component: unterminated placeholder in id template %q", t.template)
		}
		name := rest[:closeIdx]
		rest = rest[closeIdx+1:]

		if name == "" {
			return "", false, fmt.Errorf("nested.component: empty {} placeholder in id template %q", t.template)
		}
		if v, ok := t.scalarArgs[name]; ok {
			fmt.Fprint(&out, v)
			continue
		}
		v, ok := t.tsArgs[name]
		if !ok {
			return "", false, fmt.Errorf("nested.component: id template %q references unknown arg %q", t.template, name)
		}
		if !v.Valid() {
			return "", false, nil
		}
		sv, ok := v.(scalarValue)
		if !ok {
			return "", false, fmt.Errorf("nested.component: id template %q arg %q is not a scalar value", t.template, name)
		}
		fmt.Fprint(&out, sv.Value())
	}
	return out.String(), true, nil
}

// Component is the component nested node (spec §4.6): a single sub-graph
// identified by a deterministically-resolved recordable id, claimed in a
// process-wide registry to guarantee uniqueness. The component's output
// is a stub REF rebound directly at the upstream data so the wrapper adds
// no latency to downstream readers.
type Component struct {
	*node.Node

	registry *ComponentRegistry
	resolve  IDArgs

	recordableID string
	claimed      bool

	sub      *graph.Graph
	buildSub func(recordableID string) (*graph.Graph, tsvalue.Value, error)
	output   *tsvalue.Ref

	nextWake tstime.Time
}

// NewComponent constructs a component node. buildSub receives the
// resolved recordable id and must return the sub-graph plus the inner
// output Value the stub REF should be bound to. wireInputs are the TS
// values resolve's id template reads (if any): wiring them as the node's
// own inputs is what makes a deferred Wire retry actually happen — the
// graph re-evaluates this node whenever one of them ticks, which is
// exactly the cycle a not-yet-valid arg becomes valid (spec §8 scenario
// 6). Pass nil when resolve needs no TS args (e.g. a LiteralID).
func NewComponent(sig node.Signature, registry *ComponentRegistry, resolve IDArgs, wireInputs []tsvalue.Value,
	outputMeta *typesys.TSMeta, buildSub func(recordableID string) (*graph.Graph, tsvalue.Value, error)) (*Component, error) {
	if registry == nil {
		registry = globalComponentRegistry
	}
	c := &Component{
		registry: registry,
		resolve:  resolve,
		buildSub: buildSub,
		output:   tsvalue.NewRef(outputMeta),
		nextWake: tstime.MaxDT,
	}
	c.Node = node.New(sig, node.KindCompute, c.apply, wireInputs, []tsvalue.Value{c.output})
	return c, nil
}

// Output is the stub REF output downstream nodes bind through.
func (c *Component) Output() *tsvalue.Ref { return c.output }

// Wire attempts to resolve the recordable id, claim it, and build/
// initialise the sub-graph. If resolve reports not-ready (a referenced TS
// arg isn't valid yet), Wire returns nil having done nothing, and the
// caller is expected to call Wire again on a later cycle — apply does
// exactly that every tick until wiring succeeds (spec §8 scenario 6:
// wiring is deferred until every referenced TS arg is valid). Once wired,
// Wire is a no-op.
func (c *Component) Wire(now tstime.Time) error {
	if c.sub != nil {
		return nil
	}

	id, ready, err := c.resolve.Resolve(now)
	if err != nil {
		return fmt.Errorf("nested.component: resolve recordable id: %w", err)
	}
	if !ready {
		return nil
	}
	if id == "" {
		id = "component/" + uuid.New().String()
	}
	if err := c.registry.Claim(id); err != nil {
		return err
	}
	c.recordableID = id
	c.claimed = true

	g, innerOutput, err := c.buildSub(id)
	if err != nil {
		c.registry.Release(id)
		c.claimed = false
		return fmt.Errorf("nested.component: build sub-graph %s: %w", id, err)
	}
	if err := g.Initialise(); err != nil {
		c.registry.Release(id)
		c.claimed = false
		return fmt.Errorf("nested.component: initialise sub-graph %s: %w", id, err)
	}
	c.sub = g
	c.output.Bind(now, innerOutput)
	c.nextWake = now
	return nil
}

// RecordableID returns the resolved id, valid only after Wire.
func (c *Component) RecordableID() string { return c.recordableID }

func (c *Component) apply(ctx *node.EvalContext) error {
	if c.sub == nil {
		if err := c.Wire(ctx.Now); err != nil {
			return err
		}
	}
	if c.sub != nil && c.sub.State() == graph.StateInitialised {
		if err := c.sub.Start(); err != nil {
			return fmt.Errorf("nested.component: start sub-graph %s: %w", c.recordableID, err)
		}
	}
	if c.sub == nil || c.nextWake != ctx.Now {
		return nil
	}
	c.nextWake = tstime.MaxDT
	nc := NewNestedClock(ctx.Now, func(t tstime.Time) { c.nextWake = t }, ctx.Schedule)
	return c.sub.EvaluateGraph(nc)
}

// Teardown disposes the sub-graph and releases the recordable id,
// mirroring the scope-guard discipline spec §5 requires around
// initialise_component/dispose_component.
func (c *Component) Teardown() error {
	var err error
	if c.sub != nil {
		err = c.sub.ReduceGraph(0)
	}
	if c.claimed {
		c.registry.Release(c.recordableID)
		c.claimed = false
	}
	return err
}
