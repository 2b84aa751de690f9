package graph

import (
	"github.com/sbl8/tsflow/engerr"
	"github.com/sbl8/tsflow/tslink"
	"github.com/sbl8/tsflow/tsvalue"
)

// Bind installs an edge from output into nodeIndex's input, recursing
// per the container fan-out rule (spec §4.4). Structurally invalid binds
// are fatal at build time (spec §4.7), surfaced here as
// engerr.ErrIncompatibleBind rather than tslink's plain wrapped error.
func (g *Graph) Bind(nodeIndex int, input, output tsvalue.Value) ([]*tslink.TSLink, error) {
	owner := nodeOwner{g: g, idx: nodeIndex}
	links, err := tslink.Bind(owner, input, output)
	if err != nil {
		return nil, engerr.Fatal(engerr.ErrIncompatibleBind, err.Error())
	}
	return links, nil
}

// BindRef installs a two-channel REF link (spec §4.4) feeding nodeIndex.
func (g *Graph) BindRef(nodeIndex int, ref *tsvalue.Ref, resolve tslink.Resolver) *tslink.TSRefTargetLink {
	owner := nodeOwner{g: g, idx: nodeIndex}
	return tslink.NewTSRefTargetLink(owner, ref, resolve)
}
