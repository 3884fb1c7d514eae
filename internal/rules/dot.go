package rules

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// WriteDot renders the graph in Graphviz DOT format. Each node is a record
// holding its segment pattern and, when it ends a rule, that rule's actions.
func (g *Graph) WriteDot(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph patterns {")
	fmt.Fprintln(bw, "node [shape=box];")
	fmt.Fprintln(bw, `graph [ rankdir="LR" ];`)
	fmt.Fprintln(bw, `"root" [shape="diamond"];`)
	for _, n := range g.root.children {
		writeDotNode(bw, n, "root")
	}
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}

func writeDotNode(w io.Writer, n *node, parentID string) {
	id := uuid.NewString()

	label := ""
	if n.actions != nil {
		label = n.actions.String()
	}
	fmt.Fprintf(w, "%q [label=\"<f0> %s| <f1> %s\", shape=\"record\"];\n", id, dotEscape(n.pattern), label)
	fmt.Fprintf(w, "%q -> %q;\n", parentID, id)

	for _, child := range n.children {
		writeDotNode(w, child, id)
	}
}

// dotEscape escapes characters that are significant inside record labels.
func dotEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `|`, `\|`, `{`, `\{`, `}`, `\}`, `<`, `\<`, `>`, `\>`)
	return r.Replace(s)
}
