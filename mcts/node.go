package mcts

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/puctree/game"
)

// ExplorationBonus is added to the visit ratio so that priors already matter on the first
// selection from a node, when every sqrt(N)/(1+n) term is still zero.
const ExplorationBonus = 1e-4

// Node is an explored state. Its edges are fixed at creation, one per legal action.
// A node without edges is terminal.
type Node struct {
	state  game.State
	visits float64 // simulations that passed through this node - N(s) in the literature
	edges  []*Edge
}

// Edge is one action out of a node.
type Edge struct {
	action game.Action
	child  *Node // expanded on first traversal, never replaced

	visits float64 // N(s, a)
	total  float64 // W(s, a)
	qsa    float64 // Q(s, a) = W(s, a) / N(s, a)
	psa    float64 // P(s, a), fixed at creation
}

// NewNode creates a node for state with one edge per action carrying the matching prior.
// It panics if len(priors) != len(actions), or if actions disagrees with the state's terminal status.
func NewNode(state game.State, actions []game.Action, priors []float64) *Node {
	if len(actions) != len(priors) {
		panic(fmt.Sprintf("%d priors for %d actions", len(priors), len(actions)))
	}
	terminal := state.Status().IsTerminal()
	switch {
	case len(actions) == 0 && !terminal:
		panic(fmt.Sprintf("state has no legal actions but is not terminal:\n%v", state))
	case len(actions) > 0 && terminal:
		panic(fmt.Sprintf("terminal state has %d legal actions:\n%v", len(actions), state))
	}

	edges := make([]*Edge, len(actions))
	for i, a := range actions {
		edges[i] = &Edge{action: a, psa: priors[i]}
	}
	return &Node{state: state, edges: edges}
}

// State returns the state snapshot owned by the node. It must not be mutated.
func (n *Node) State() game.State { return n.state }

// Visits returns N(s).
func (n *Node) Visits() float64 { return n.visits }

// Edges returns the edges of the node in action order.
func (n *Node) Edges() []*Edge { return n.edges }

// IsTerminal returns true if the node has no edges.
func (n *Node) IsTerminal() bool { return len(n.edges) == 0 }

// Select selects the best edge based on the alpha zero paper.
// The upper bound formula is as such
//
//	U(s, a) = Q(s, a) + c * P(s, a) * (sqrt(N(s)) / (1 + N(s, a)) + ExplorationBonus)
//
// where c is the exploration factor of the state. The first maximum wins, so ties go
// to the lowest index.
func (n *Node) Select() int {
	if len(n.edges) == 0 {
		panic("cannot select an edge of a terminal node")
	}

	c := n.state.ExplorationFactor()
	numerator := math.Sqrt(n.visits)

	best := -1
	bestValue := math.Inf(-1)
	for i, e := range n.edges {
		puct := c * e.psa * (numerator/(1+e.visits) + ExplorationBonus)
		usa := e.qsa + puct
		if usa > bestValue {
			bestValue = usa
			best = i
		}
	}
	if best < 0 {
		panic(fmt.Sprintf("no selectable edge among %d (NaN statistics?)", len(n.edges)))
	}
	return best
}

// WalkToLeaf runs one simulation from n: select an edge, recurse into its child or expand it
// with eval, then back the value up. The returned value is from the point of view of the
// player to move at n.
//
// On a terminal node the exact score is returned and nothing is mutated. If eval fails the
// error is returned and no statistic on the path is touched.
func (n *Node) WalkToLeaf(eval Evaluator) (float64, error) {
	if len(n.edges) == 0 {
		return ScoreTerminal(n.state, n.state.Player()), nil
	}

	e := n.edges[n.Select()]

	var value float64
	if e.child != nil {
		v, err := e.child.WalkToLeaf(eval)
		if err != nil {
			return 0, err
		}
		// alternating players
		value = -v
	} else {
		next := n.state.Clone()
		next.Apply(e.action)
		child, v, err := eval.CreateNode(next)
		if err != nil {
			return 0, errors.WithMessagef(err, "expand action %d", e.action)
		}
		if child == nil {
			panic("evaluator returned a nil node without an error")
		}
		e.child = child
		value = -v
	}

	e.update(value)
	n.visits++
	return value, nil
}

// Action returns the action of the edge.
func (e *Edge) Action() game.Action { return e.action }

// Child returns the expanded node behind the edge, nil if it was never traversed.
func (e *Edge) Child() *Node { return e.child }

// Visits returns N(s, a).
func (e *Edge) Visits() float64 { return e.visits }

// TotalValue returns W(s, a).
func (e *Edge) TotalValue() float64 { return e.total }

// ExpectedReward returns Q(s, a). It is 0 before the first visit.
func (e *Edge) ExpectedReward() float64 { return e.qsa }

// Prior returns P(s, a).
func (e *Edge) Prior() float64 { return e.psa }

func (e *Edge) update(v float64) {
	e.total += v
	e.visits++
	e.qsa = e.total / e.visits
}

// EdgeStat is the readout of one root edge.
type EdgeStat struct {
	Action         game.Action
	Visits         float64
	ExpectedReward float64
	Prior          float64
}

// Stats returns the statistics of every edge of n, in edge order.
func (n *Node) Stats() []EdgeStat {
	retVal := make([]EdgeStat, len(n.edges))
	for i, e := range n.edges {
		retVal[i] = EdgeStat{
			Action:         e.action,
			Visits:         e.visits,
			ExpectedReward: e.qsa,
			Prior:          e.psa,
		}
	}
	return retVal
}

// countNodes counts the node and every expanded descendant.
func (n *Node) countNodes() (retVal int) {
	retVal = 1
	for _, e := range n.edges {
		if e.child != nil {
			retVal += e.child.countNodes()
		}
	}
	return
}

// depth returns the length of the longest expanded path below n.
func (n *Node) depth() (retVal int) {
	for _, e := range n.edges {
		if e.child != nil {
			if d := e.child.depth() + 1; d > retVal {
				retVal = d
			}
		}
	}
	return
}
