package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// DumpTree renders the node tree as indented text. It is meant for debug
// reports and logs, the bundle and tree outputs carry the machine
// readable form.
func DumpTree(n *Node) string {
	tw := &treeWriter{}
	tw.node(n, 0)
	return tw.String()
}

type treeWriter struct {
	b strings.Builder
}

func (tw *treeWriter) String() string { return tw.b.String() }

func (tw *treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.b.WriteString("  ")
	}
	fmt.Fprintf(&tw.b, format, args...)
	tw.b.WriteByte('\n')
}

func (tw *treeWriter) node(n *Node, depth int) {
	tw.line(depth, "%s", n.kind)

	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		tw.line(depth+1, "%s = %v", name, n.attrs[name])
	}

	if text := n.Text(); text != "" {
		tw.line(depth+1, "text: %s", strconv.Quote(text))
	}

	if b := n.boundary; b != nil && b.Len() > 0 {
		pts := make([]string, 0, b.Len())
		for i := range b.Len() {
			p := b.Point(i)
			pts = append(pts, fmt.Sprintf("(%g, %g)", p.X, p.Y))
		}
		tw.line(depth+1, "boundary: %s", strings.Join(pts, " "))
	}

	for _, child := range n.children {
		tw.node(child, depth+1)
	}
}
