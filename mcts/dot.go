package mcts

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

const graphName = "mcts"

// Dot renders the expanded part of the tree under root as a Graphviz digraph, down to
// maxDepth plies (all of it if maxDepth < 0). Edges are labelled with their statistics and
// unexpanded edges are left out.
func Dot(root *Node, maxDepth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}

	var id int
	var walk func(n *Node, name string, depth int) error
	walk = func(n *Node, name string, depth int) error {
		label := fmt.Sprintf("%q", fmt.Sprintf("N=%v", n.visits))
		if n.IsTerminal() {
			label = fmt.Sprintf("%q", fmt.Sprintf("N=%v\n%v", n.visits, n.state.Status().Outcome))
		}
		if err := g.AddNode(graphName, name, map[string]string{"label": label}); err != nil {
			return errors.WithStack(err)
		}
		if maxDepth >= 0 && depth >= maxDepth {
			return nil
		}
		for _, e := range n.edges {
			if e.child == nil {
				continue
			}
			id++
			childName := fmt.Sprintf("n%d", id)
			if err := walk(e.child, childName, depth+1); err != nil {
				return err
			}
			edgeLabel := fmt.Sprintf("%q", fmt.Sprintf("a=%v n=%v q=%.3f p=%.3f", e.action, e.visits, e.qsa, e.psa))
			if err := g.AddEdge(name, childName, true, map[string]string{"label": edgeLabel}); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	if err := walk(root, "n0", 0); err != nil {
		return "", err
	}
	return g.String(), nil
}
