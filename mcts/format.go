package mcts

import (
	"fmt"
	"strings"
)

// Format implements fmt.Formatter.
//
// %v prints a one line summary of the node. %+v prints the state followed by
// the whole expanded subtree, one edge per line, children indented below their edge.
func (n *Node) Format(s fmt.State, c rune) {
	if !s.Flag('+') {
		fmt.Fprintf(s, "{Edges: %d, Visits: %v, Terminal: %v}", len(n.edges), n.visits, n.IsTerminal())
		return
	}
	n.write(s, "")
}

func (n *Node) write(s fmt.State, indent string) {
	for _, line := range strings.Split(strings.TrimRight(fmt.Sprint(n.state), "\n"), "\n") {
		fmt.Fprintf(s, "%s%s\n", indent, line)
	}
	fmt.Fprintf(s, "%sThis node has %d children with a total of %v visits\n", indent, len(n.edges), n.visits)
	for _, e := range n.edges {
		fmt.Fprintf(s, "%s%v\n", indent, e)
		if e.child != nil {
			e.child.write(s, indent+"  ")
		}
	}
}

// Format implements fmt.Formatter.
func (e *Edge) Format(s fmt.State, c rune) {
	if e.child == nil {
		fmt.Fprintf(s, "Action %v, P(s,a) %.4f, unexpanded", e.action, e.psa)
		return
	}
	fmt.Fprintf(s, "Action %v, P(s,a) %.4f, Visits %v, W(s,a) %v, Q(s,a) %.4f",
		e.action, e.psa, e.visits, e.total, e.qsa)
}
