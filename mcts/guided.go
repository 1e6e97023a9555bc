package mcts

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/puctree/game"
	"gorgonia.org/vecf32"
)

// Inferencer is essentially the neural network.
type Inferencer interface {
	Infer(input []float32) (policy []float32, value float32, err error)
}

var (
	ErrPolicyShape = errors.New("policy output does not cover the action space")
	ErrPolicyRange = errors.New("policy output is negative or not finite")
	ErrValueRange  = errors.New("value output is not in [-1, 1]")
)

// GuidedEvaluator reads priors and the value of a state from one forward pass of an
// Inferencer over the encoded state. The prior of action a is policy[a].
type GuidedEvaluator struct {
	nn          Inferencer
	enc         game.Encoder
	renormalize bool
}

// GuidedOption configures a GuidedEvaluator.
type GuidedOption func(g *GuidedEvaluator)

// WithRenormalize rescales the priors of the legal actions so that they sum to 1.
// If they sum to (almost) nothing the priors become uniform.
func WithRenormalize() GuidedOption {
	return func(g *GuidedEvaluator) { g.renormalize = true }
}

// NewGuidedEvaluator creates an evaluator backed by nn, feeding it enc(state).
func NewGuidedEvaluator(nn Inferencer, enc game.Encoder, opts ...GuidedOption) *GuidedEvaluator {
	if nn == nil || enc == nil {
		panic("guided evaluator needs an inferencer and an encoder")
	}
	g := &GuidedEvaluator{nn: nn, enc: enc}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateNode evaluates state with the predictor. Terminal states are scored exactly
// without consulting it.
func (g *GuidedEvaluator) CreateNode(state game.State) (*Node, float64, error) {
	if state.Status().IsTerminal() {
		return NewNode(state, nil, nil), ScoreTerminal(state, state.Player()), nil
	}

	policy, value, err := g.nn.Infer(g.enc(state))
	if err != nil {
		return nil, 0, errors.Wrap(err, "infer")
	}
	if len(policy) < state.ActionSpace() {
		return nil, 0, errors.Wrapf(ErrPolicyShape, "%d outputs for %d actions", len(policy), state.ActionSpace())
	}
	if math32.IsNaN(value) || value < -1 || value > 1 {
		return nil, 0, errors.Wrapf(ErrValueRange, "got %v", value)
	}

	actions := state.Actions()
	legal := make([]float32, len(actions))
	for i, a := range actions {
		if int(a) < 0 || int(a) >= len(policy) {
			return nil, 0, errors.Wrapf(ErrPolicyShape, "action %d outside %d outputs", a, len(policy))
		}
		p := policy[a]
		if math32.IsNaN(p) || math32.IsInf(p, 0) || p < 0 {
			return nil, 0, errors.Wrapf(ErrPolicyRange, "action %d has prior %v", a, p)
		}
		legal[i] = p
	}
	if g.renormalize && len(legal) > 0 {
		if sum := vecf32.Sum(legal); sum > math32.SmallestNonzeroFloat32 {
			vecf32.Scale(legal, 1/sum)
		} else {
			prob := 1 / float32(len(legal))
			for i := range legal {
				legal[i] = prob
			}
		}
	}

	priors := make([]float64, len(legal))
	for i, p := range legal {
		priors[i] = float64(p)
	}
	return NewNode(state, actions, priors), float64(value), nil
}
