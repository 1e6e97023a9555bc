package mcts

import (
	"fmt"

	"github.com/puctree/game"
)

// Evaluator creates the node for a freshly reached state.
//
// CreateNode returns a node whose edges already carry a prior for every legal action, and a
// value estimate of state in [-1, 1] from the point of view of the player to move there.
type Evaluator interface {
	CreateNode(state game.State) (*Node, float64, error)
}

// Scores of a finished game.
const (
	Win  = 1.0
	Loss = -Win
	Tie  = 0.0
)

// ScoreTerminal scores a terminal state for player. It panics if the game is not over.
func ScoreTerminal(state game.State, player game.Player) float64 {
	status := state.Status()
	switch status.Outcome {
	case game.Draw:
		return Tie
	case game.Won:
		if status.Winner == player {
			return Win
		}
		return Loss
	}
	panic(fmt.Sprintf("cannot score a game in progress:\n%v", state))
}
