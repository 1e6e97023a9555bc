package mcts

import (
	"fmt"
	"math/rand"

	"github.com/puctree/game"
)

// DefaultJitter is the scale of the uniform noise added to rollout priors to break ties.
const DefaultJitter = 0.001

// RolloutEvaluator gives every action the same prior (plus a little noise) and values a
// state by playing it out with uniformly random moves.
//
// The game must end under random play. A RolloutEvaluator is not safe for concurrent use.
type RolloutEvaluator struct {
	rng    *rand.Rand
	jitter float64
}

// RolloutOption configures a RolloutEvaluator.
type RolloutOption func(r *RolloutEvaluator)

// WithJitter sets the noise scale. Zero gives exactly uniform priors.
func WithJitter(jitter float64) RolloutOption {
	return func(r *RolloutEvaluator) {
		if jitter >= 0 {
			r.jitter = jitter
		}
	}
}

// NewRolloutEvaluator creates a rollout evaluator drawing all randomness from rng.
func NewRolloutEvaluator(rng *rand.Rand, opts ...RolloutOption) *RolloutEvaluator {
	if rng == nil {
		panic("rollout evaluator needs a random source")
	}
	r := &RolloutEvaluator{
		rng:    rng,
		jitter: DefaultJitter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateNode gives every legal action the prior 1/|A| plus jitter and values state with one Rollout.
func (r *RolloutEvaluator) CreateNode(state game.State) (*Node, float64, error) {
	actions := state.Actions()
	priors := make([]float64, len(actions))
	if len(actions) > 0 {
		prior := 1 / float64(len(actions))
		for i := range priors {
			priors[i] = prior + r.jitter*r.rng.Float64()
		}
	}
	node := NewNode(state, actions, priors)
	return node, r.Rollout(state), nil
}

// Rollout plays a copy of state to the end and scores it for the player to move at state.
func (r *RolloutEvaluator) Rollout(state game.State) float64 {
	player := state.Player()
	s := state.Clone()
	for !s.Status().IsTerminal() {
		actions := s.Actions()
		if len(actions) == 0 {
			panic(fmt.Sprintf("state has no legal actions but is not terminal:\n%v", s))
		}
		s.Apply(actions[r.rng.Intn(len(actions))])
	}
	return ScoreTerminal(s, player)
}
