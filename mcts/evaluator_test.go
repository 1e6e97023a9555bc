package mcts

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/puctree/game"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken evaluator")

// failingEvaluator fails every CreateNode once broken is set.
type failingEvaluator struct {
	Evaluator
	broken bool
}

func (f *failingEvaluator) CreateNode(state game.State) (*Node, float64, error) {
	if f.broken {
		return nil, 0, errBroken
	}
	return f.Evaluator.CreateNode(state)
}

// stubInferencer returns the same output for every input and records what it was fed.
type stubInferencer struct {
	policy []float32
	value  float32
	err    error

	calls  int
	inputs [][]float32
}

func (s *stubInferencer) Infer(input []float32) ([]float32, float32, error) {
	s.calls++
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, 0, s.err
	}
	policy := make([]float32, len(s.policy))
	copy(policy, s.policy)
	return policy, s.value, nil
}

func uniformInferencer(actionSpace int) *stubInferencer {
	policy := make([]float32, actionSpace)
	for i := range policy {
		policy[i] = 1 / float32(actionSpace)
	}
	return &stubInferencer{policy: policy}
}

// mockEncoder encodes a mock state as its position index.
func mockEncoder(s game.State) []float32 { return []float32{float32(s.(*mockState).at)} }

func TestScoreTerminal(t *testing.T) {
	won := newMockState(1, mockPosition{player: game.First, status: game.WonBy(game.Second)})
	drawn := newMockState(1, mockPosition{player: game.First, status: game.Drawn()})

	require.Equal(t, Win, ScoreTerminal(won, game.Second))
	require.Equal(t, Loss, ScoreTerminal(won, game.First))
	require.Equal(t, Tie, ScoreTerminal(drawn, game.First))
	require.Equal(t, Tie, ScoreTerminal(drawn, game.Second))
	require.Panics(t, func() { ScoreTerminal(game.NewTicTacToe(), game.First) })
}

func TestRolloutEvaluator(t *testing.T) {
	t.Run("priors are uniform plus jitter", func(t *testing.T) {
		eval := NewRolloutEvaluator(newRand(1))
		n, _, err := eval.CreateNode(game.NewTicTacToe())
		require.NoError(t, err)

		require.Len(t, n.Edges(), 9)
		for _, e := range n.Edges() {
			require.GreaterOrEqual(t, e.Prior(), 1.0/9)
			require.Less(t, e.Prior(), 1.0/9+DefaultJitter)
		}
	})

	t.Run("zero jitter gives exactly uniform priors", func(t *testing.T) {
		eval := NewRolloutEvaluator(newRand(1), WithJitter(0))
		n, _, err := eval.CreateNode(game.NewTicTacToe())
		require.NoError(t, err)
		for _, e := range n.Edges() {
			require.Equal(t, 1.0/9, e.Prior())
		}
	})

	t.Run("negative jitter is ignored", func(t *testing.T) {
		eval := NewRolloutEvaluator(newRand(1), WithJitter(-1))
		require.Equal(t, DefaultJitter, eval.jitter)
	})

	t.Run("values are game results", func(t *testing.T) {
		eval := NewRolloutEvaluator(newRand(5))
		for i := 0; i < 500; i++ {
			v := eval.Rollout(game.NewTicTacToe())
			require.Contains(t, []float64{Win, Loss, Tie}, v)
		}
	})

	t.Run("rollout does not touch the state", func(t *testing.T) {
		eval := NewRolloutEvaluator(newRand(5))
		state := game.NewTicTacToe()
		state.Apply(4)
		before := *state

		eval.Rollout(state)

		require.Equal(t, before, *state)
	})

	t.Run("forced lines score exactly", func(t *testing.T) {
		eval := NewRolloutEvaluator(newRand(5))
		state := forcedWin()
		require.Equal(t, Win, eval.Rollout(state))
		state.Apply(0)
		require.Equal(t, Loss, eval.Rollout(state))
	})

	t.Run("same seed, same tree", func(t *testing.T) {
		a := NewRolloutEvaluator(newRand(9))
		b := NewRolloutEvaluator(newRand(9))
		ra, err := New(Config{Simulations: 300}, a).Search(game.NewTicTacToe())
		require.NoError(t, err)
		rb, err := New(Config{Simulations: 300}, b).Search(game.NewTicTacToe())
		require.NoError(t, err)

		require.Equal(t, ra.Stats(), rb.Stats())
	})

	t.Run("panics without a random source", func(t *testing.T) {
		require.Panics(t, func() { NewRolloutEvaluator(nil) })
	})
}

func TestGuidedEvaluator(t *testing.T) {
	t.Run("priors and value come from the predictor", func(t *testing.T) {
		nn := &stubInferencer{policy: []float32{0.2, 0.3, 0.5}, value: 0.25}
		eval := NewGuidedEvaluator(nn, mockEncoder)

		n, v, err := eval.CreateNode(threeWays())

		require.NoError(t, err)
		require.Equal(t, 0.25, v)
		require.Len(t, n.Edges(), 3)
		for i, e := range n.Edges() {
			require.InDelta(t, float64(nn.policy[i]), e.Prior(), 1e-7)
		}
		require.Equal(t, [][]float32{{0}}, nn.inputs, "The predictor should see the encoded state")
	})

	t.Run("priors follow the action index", func(t *testing.T) {
		policy := make([]float32, game.TicTacToeCells)
		for i := range policy {
			policy[i] = float32(i) / 100
		}
		eval := NewGuidedEvaluator(&stubInferencer{policy: policy}, game.TicTacToeEncoder)
		state := game.NewTicTacToe()
		state.Apply(0)
		state.Apply(4)

		n, _, err := eval.CreateNode(state)

		require.NoError(t, err)
		require.Len(t, n.Edges(), 7)
		for _, e := range n.Edges() {
			require.InDelta(t, float64(e.Action())/100, e.Prior(), 1e-7)
		}
	})

	t.Run("renormalized priors sum to one", func(t *testing.T) {
		policy := make([]float32, game.TicTacToeCells)
		for i := range policy {
			policy[i] = 0.1
		}
		eval := NewGuidedEvaluator(&stubInferencer{policy: policy}, game.TicTacToeEncoder, WithRenormalize())
		state := game.NewTicTacToe()
		state.Apply(0)
		state.Apply(4)

		n, _, err := eval.CreateNode(state)

		require.NoError(t, err)
		var sum float64
		for _, e := range n.Edges() {
			sum += e.Prior()
			require.InDelta(t, 1.0/7, e.Prior(), 1e-6)
		}
		require.InDelta(t, 1.0, sum, 1e-6)
	})

	t.Run("renormalizing an empty policy gives uniform priors", func(t *testing.T) {
		eval := NewGuidedEvaluator(&stubInferencer{policy: make([]float32, 3)}, mockEncoder, WithRenormalize())

		n, _, err := eval.CreateNode(threeWays())

		require.NoError(t, err)
		for _, e := range n.Edges() {
			require.InDelta(t, 1.0/3, e.Prior(), 1e-6)
		}
	})

	t.Run("terminal states are scored without the predictor", func(t *testing.T) {
		nn := uniformInferencer(1)
		eval := NewGuidedEvaluator(nn, mockEncoder)
		state := forcedWin()
		state.Apply(0)
		state.Apply(0)

		n, v, err := eval.CreateNode(state)

		require.NoError(t, err)
		require.True(t, n.IsTerminal())
		require.Equal(t, Win, v)
		require.Zero(t, nn.calls)
	})

	t.Run("predictor errors are returned", func(t *testing.T) {
		nn := &stubInferencer{err: errBroken}
		eval := NewGuidedEvaluator(nn, mockEncoder)

		n, _, err := eval.CreateNode(threeWays())

		require.ErrorIs(t, err, errBroken)
		require.Nil(t, n)
	})

	t.Run("short policies are rejected", func(t *testing.T) {
		eval := NewGuidedEvaluator(&stubInferencer{policy: []float32{0.5, 0.5}}, mockEncoder)

		_, _, err := eval.CreateNode(threeWays())

		require.ErrorIs(t, err, ErrPolicyShape)
	})

	t.Run("non-finite or negative priors are rejected", func(t *testing.T) {
		for _, p := range []float32{math32.NaN(), math32.Inf(1), math32.Inf(-1), -0.1} {
			policy := make([]float32, game.TicTacToeCells)
			for i := range policy {
				policy[i] = p
			}
			eval := NewGuidedEvaluator(&stubInferencer{policy: policy}, game.TicTacToeEncoder)

			n, _, err := eval.CreateNode(game.NewTicTacToe())

			require.ErrorIs(t, err, ErrPolicyRange, "prior %v", p)
			require.Nil(t, n)
		}
	})

	t.Run("bad priors fail the search instead of panicking", func(t *testing.T) {
		nn := uniformInferencer(game.TicTacToeCells)
		eval := NewGuidedEvaluator(nn, game.TicTacToeEncoder)
		root, _, err := eval.CreateNode(game.NewTicTacToe())
		require.NoError(t, err)
		for i := range nn.policy {
			nn.policy[i] = math32.NaN()
		}

		var walkErr error
		require.NotPanics(t, func() { _, walkErr = root.WalkToLeaf(eval) })
		require.ErrorIs(t, walkErr, ErrPolicyRange)
		require.Zero(t, root.Visits())
		for _, e := range root.Edges() {
			require.Zero(t, e.Visits())
		}
	})

	t.Run("values out of range are rejected", func(t *testing.T) {
		for _, v := range []float32{1.5, -1.01} {
			eval := NewGuidedEvaluator(&stubInferencer{policy: []float32{0.2, 0.3, 0.5}, value: v}, mockEncoder)
			_, _, err := eval.CreateNode(threeWays())
			require.ErrorIs(t, err, ErrValueRange, "value %v", v)
		}
	})

	t.Run("search fails without touching the root", func(t *testing.T) {
		nn := uniformInferencer(3)
		tree := New(Config{Simulations: 10}, NewGuidedEvaluator(nn, mockEncoder))
		nn.err = errBroken

		root, err := tree.Search(threeWays())

		require.ErrorIs(t, err, errBroken)
		require.Nil(t, root)
	})

	t.Run("values stay in range", func(t *testing.T) {
		nn := uniformInferencer(game.TicTacToeCells)
		nn.value = -0.75
		eval := NewGuidedEvaluator(nn, game.TicTacToeEncoder)
		root, err := New(Config{Simulations: 500}, eval).Search(game.NewTicTacToe())
		require.NoError(t, err)
		checkTree(t, root)
	})

	t.Run("panics without an inferencer or an encoder", func(t *testing.T) {
		require.Panics(t, func() { NewGuidedEvaluator(nil, mockEncoder) })
		require.Panics(t, func() { NewGuidedEvaluator(uniformInferencer(1), nil) })
	})
}
