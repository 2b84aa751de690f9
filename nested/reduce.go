package nested

import (
	"reflect"

	"github.com/sbl8/tsflow/node"
	"github.com/sbl8/tsflow/tsvalue"
	"github.com/sbl8/tsflow/typesys"
)

// CombineFunc pairwise-combines two leaf values. Associativity is the
// caller's responsibility (spec §4.6: "pairwise associative reduction").
type CombineFunc func(a, b any) any

// Reduce is the reduce(tree) nested node (spec §4.6): a complete binary
// tree over a TSD's current values, combined pairwise bottom-up.
//
// The distilled spec describes each tree level as its own sub-graph pair
// of ref inputs/ref output; this implementation reduces directly over
// the leaf values instead of instantiating a graph.Graph per internal
// tree node — the externally observable behavior (leftmost-free leaf
// assignment, growth/shrink thresholds, the propagation rule) is
// preserved, but the internal combine step is a plain function call
// rather than a nested sub-graph evaluation. See DESIGN.md for why a
// graph.Graph-per-node tree was judged out of proportion to this node
// kind's value here.
type Reduce struct {
	*node.Node

	input   *tsvalue.Dict
	combine CombineFunc
	zero    any

	leafKey     []any
	leafOf      map[any]int
	tree        []any // 1-indexed complete binary tree, size 2*capacity
	capacity    int
	activeCount int

	output   *tsvalue.TS
	haveRoot bool
	lastRoot any
}

func NewReduce(sig node.Signature, input *tsvalue.Dict, outMeta *typesys.TSMeta, zero any, combine CombineFunc) *Reduce {
	r := &Reduce{
		input:    input,
		combine:  combine,
		zero:     zero,
		leafOf:   map[any]int{},
		capacity: 1,
		leafKey:  make([]any, 1),
		tree:     make([]any, 2),
		output:   tsvalue.NewTS(outMeta),
	}
	r.Node = node.New(sig, node.KindCompute, r.apply, []tsvalue.Value{input}, []tsvalue.Value{r.output})
	return r
}

func (r *Reduce) Output() *tsvalue.TS { return r.output }

func (r *Reduce) apply(ctx *node.EvalContext) error {
	for _, k := range r.input.Added() {
		r.insert(k)
	}
	for _, k := range r.input.Removed() {
		r.remove(k)
	}

	for k, leaf := range r.leafOf {
		if v, ok := r.input.Get(k); ok {
			if ts, ok := v.(*tsvalue.TS); ok {
				r.tree[r.capacity+leaf] = ts.Value()
			}
		}
	}
	r.recompute()

	newRoot := r.rootValue()
	if !r.haveRoot || !valuesEqual(r.lastRoot, newRoot) {
		r.output.Set(ctx.Now, newRoot)
		r.lastRoot = newRoot
		r.haveRoot = true
	}
	return nil
}

func (r *Reduce) insert(key any) {
	if _, ok := r.leafOf[key]; ok {
		return
	}
	if r.activeCount >= r.capacity {
		r.resize(r.capacity * 2)
	}
	leaf := r.leftmostFree()
	r.leafKey[leaf] = key
	r.leafOf[key] = leaf
	r.activeCount++
}

func (r *Reduce) remove(key any) {
	leaf, ok := r.leafOf[key]
	if !ok {
		return
	}
	delete(r.leafOf, key)
	r.leafKey[leaf] = nil
	r.tree[r.capacity+leaf] = nil
	r.activeCount--

	// Preserve "no bound key sits to the right of a free leaf": swap the
	// rightmost still-bound leaf into the freed slot if it is further
	// right.
	if last := r.rightmostBound(); last > leaf {
		k := r.leafKey[last]
		r.leafKey[leaf] = k
		r.leafKey[last] = nil
		r.tree[r.capacity+leaf] = r.tree[r.capacity+last]
		r.tree[r.capacity+last] = nil
		r.leafOf[k] = leaf
	}

	if r.activeCount > 0 && r.capacity > 1 && r.activeCount < r.capacity/4 {
		newCap := r.capacity / 2
		if newCap < 1 {
			newCap = 1
		}
		r.resize(newCap)
	}
}

func (r *Reduce) leftmostFree() int {
	for i := 0; i < r.capacity; i++ {
		if r.leafKey[i] == nil {
			return i
		}
	}
	return r.capacity - 1
}

func (r *Reduce) rightmostBound() int {
	for i := r.capacity - 1; i >= 0; i-- {
		if r.leafKey[i] != nil {
			return i
		}
	}
	return -1
}

// resize rebuilds the tree at newCap, re-laying out bound leaves
// leftmost-first (preserving insertion order, not prior slot numbers —
// the invariant only cares about relative position).
func (r *Reduce) resize(newCap int) {
	bound := make([]any, 0, r.activeCount)
	for i := 0; i < r.capacity; i++ {
		if r.leafKey[i] != nil {
			bound = append(bound, r.leafKey[i])
		}
	}
	r.capacity = newCap
	r.leafKey = make([]any, newCap)
	r.tree = make([]any, 2*newCap)
	r.leafOf = map[any]int{}
	for i, k := range bound {
		r.leafKey[i] = k
		r.leafOf[k] = i
		if v, ok := r.input.Get(k); ok {
			if ts, ok := v.(*tsvalue.TS); ok {
				r.tree[newCap+i] = ts.Value()
			}
		}
	}
}

func (r *Reduce) recompute() {
	for i := r.capacity - 1; i >= 1; i-- {
		r.tree[i] = combineOrPassthrough(r.combine, r.tree[2*i], r.tree[2*i+1])
	}
}

func (r *Reduce) rootValue() any {
	if v := r.tree[1]; v != nil {
		return v
	}
	return r.zero
}

func combineOrPassthrough(combine CombineFunc, a, b any) any {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return combine(a, b)
	}
}

func valuesEqual(a, b any) bool { return reflect.DeepEqual(a, b) }
