package engerr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sbl8/tsflow/tstime"
)

// BackTraceArg is one named input/output rendered at a BackTraceNode: its
// truncated current value, delta value (if modified this tick), and
// whether it is an "active" arg (the one whose tick triggered this eval).
type BackTraceArg struct {
	Name         string
	Value        string
	DeltaValue   string
	Active       bool
	LastModified tstime.Time
}

// BackTraceNode is one node in the activation back-trace tree: the
// failing node plus every node transitively feeding it, each with its
// runtime path and arg snapshot.
type BackTraceNode struct {
	RuntimePath string
	Args        []BackTraceArg
	Children    []*BackTraceNode
}

// BackTrace is the root of an activation back-trace.
type BackTrace struct {
	Root *BackTraceNode
}

const maxValueLen = 80

// Truncate clips a rendered value to the back-trace's display width.
func Truncate(s string) string {
	if len(s) <= maxValueLen {
		return s
	}
	return s[:maxValueLen-len("…")] + "…"
}

// String renders the back-trace as a multi-line indented tree, with
// active args bolded (markdown-style `**name**`), matching the node
// error format's activation_back_trace field (spec §6).
func (b *BackTrace) String() string {
	if b == nil || b.Root == nil {
		return ""
	}
	var sb strings.Builder
	renderNode(&sb, b.Root, 0)
	return sb.String()
}

func renderNode(sb *strings.Builder, n *BackTraceNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s\n", indent, n.RuntimePath)

	args := append([]BackTraceArg(nil), n.Args...)
	sort.Slice(args, func(i, j int) bool { return args[i].Name < args[j].Name })
	for _, a := range args {
		name := a.Name
		if a.Active {
			name = "**" + name + "**"
		}
		line := fmt.Sprintf("%s  %s = %s", indent, name, Truncate(a.Value))
		if a.DeltaValue != "" {
			line += fmt.Sprintf(" (delta=%s)", Truncate(a.DeltaValue))
		}
		fmt.Fprintf(sb, "%s @%d\n", line, int64(a.LastModified))
	}

	for _, c := range n.Children {
		renderNode(sb, c, depth+1)
	}
}
