package puctree

import (
	"io"
	"math/rand"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	dual "github.com/puctree/dualnet"
	"github.com/puctree/game"
	"github.com/puctree/mcts"
)

// An Agent is a player backed by a search.
type Agent struct {
	Name   string
	MCTS   *mcts.MCTS
	Player game.Player

	// Statistics
	Wins float32
	Loss float32
	Draw float32

	closers []io.Closer
}

// NewAgent creates an agent searching with eval. closers are closed by Close.
func NewAgent(name string, conf mcts.Config, eval mcts.Evaluator, opts []mcts.Option, closers ...io.Closer) *Agent {
	return &Agent{
		Name:    name,
		MCTS:    mcts.New(conf, eval, opts...),
		closers: closers,
	}
}

// NewRolloutAgent creates an agent using random rollouts seeded with seed.
func NewRolloutAgent(name string, conf mcts.Config, seed int64, opts ...mcts.Option) *Agent {
	eval := mcts.NewRolloutEvaluator(rand.New(rand.NewSource(seed)))
	return NewAgent(name, conf, eval, opts)
}

// NewGuidedAgent creates an agent guided by a freshly initialized network.
func NewGuidedAgent(name string, conf Config, seed uint64, opts ...mcts.Option) (*Agent, error) {
	if conf.Encoder == nil {
		return nil, errors.New("guided agent needs an encoder")
	}
	nn := dual.New(conf.NNConf)
	if err := nn.Init(seed); err != nil {
		return nil, errors.WithMessage(err, "init network")
	}
	eval := mcts.NewGuidedEvaluator(nn, conf.Encoder, mcts.WithRenormalize())
	return NewAgent(name, conf.MCTSConf, eval, opts, nn), nil
}

// Search searches the state and returns the root of the search tree.
func (a *Agent) Search(s game.State) (*mcts.Node, error) {
	root, err := a.MCTS.Search(s)
	if err != nil {
		return nil, errors.WithMessagef(err, "agent %s", a.Name)
	}
	return root, nil
}

func (a *Agent) Close() error {
	var errs error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	a.closers = nil
	return errs
}

func (a *Agent) resetStats() {
	a.Wins = 0
	a.Loss = 0
	a.Draw = 0
}
