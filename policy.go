package puctree

import (
	"math"
	"math/rand"

	"github.com/puctree/game"
	"github.com/puctree/mcts"
	"gonum.org/v1/gonum/floats"
)

// ImprovedPolicy turns root visit counts into a distribution over the whole action space:
// a softmax of visits/temperature over the root edges, zero for every other action.
// A temperature of zero or less puts all the mass on BestAction.
func ImprovedPolicy(stats []mcts.EdgeStat, actionSpace int, temperature float64) []float32 {
	retVal := make([]float32, actionSpace)
	if len(stats) == 0 {
		return retVal
	}
	if temperature <= 0 {
		retVal[BestAction(stats)] = 1
		return retVal
	}

	visits := make([]float64, len(stats))
	for i, s := range stats {
		visits[i] = s.Visits
	}
	top := floats.Max(visits)
	for i, v := range visits {
		visits[i] = math.Exp((v - top) / temperature)
	}
	floats.Scale(1/floats.Sum(visits), visits)

	for i, s := range stats {
		retVal[s.Action] = float32(visits[i])
	}
	return retVal
}

// BestAction returns the most visited action. Ties go to the first edge.
func BestAction(stats []mcts.EdgeStat) game.Action {
	if len(stats) == 0 {
		panic("no actions to choose from")
	}
	best := 0
	for i, s := range stats[1:] {
		if s.Visits > stats[best].Visits {
			best = i + 1
		}
	}
	return stats[best].Action
}

// SampleAction draws an action index from policy.
func SampleAction(policy []float32, r *rand.Rand) game.Action {
	x := r.Float32()
	var cumulative float32
	last := -1
	for i, p := range policy {
		if p <= 0 {
			continue
		}
		cumulative += p
		last = i
		if cumulative > x {
			return game.Action(i)
		}
	}
	if last < 0 {
		panic("cannot sample from an empty policy")
	}
	// rounding left the cumulative sum short of x
	return game.Action(last)
}
