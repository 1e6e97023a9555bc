package mcts

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/puctree/game"
	"github.com/rs/zerolog"
)

// Config is the structure to configure a search.
type Config struct {
	Simulations int `json:"simulations"` // WalkToLeaf calls per search
}

func DefaultConfig() Config {
	return Config{
		Simulations: 10000,
	}
}

func (c Config) IsValid() bool {
	return c.Simulations > 0
}

type Option func(t *MCTS)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *MCTS) {
		t.log = logger
	}
}

// MCTS builds one fresh tree per search and runs the configured number of simulations on it.
// It is as safe for concurrent use as its Evaluator, which for the evaluators of this package
// means not at all.
type MCTS struct {
	Config
	eval Evaluator
	log  zerolog.Logger
}

func New(conf Config, eval Evaluator, opts ...Option) *MCTS {
	if !conf.IsValid() {
		panic("MCTS config is not valid. Unable to proceed")
	}
	if eval == nil {
		panic("MCTS needs an evaluator")
	}
	t := &MCTS{
		Config: conf,
		eval:   eval,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Evaluator returns the evaluator the tree is expanded with.
func (t *MCTS) Evaluator() Evaluator { return t.eval }

// Search creates a root for state and runs Simulations simulations from it. The caller keeps
// ownership of state; the tree works on a copy.
func (t *MCTS) Search(state game.State) (*Node, error) {
	return t.search(context.Background(), state)
}

func (t *MCTS) search(ctx context.Context, state game.State) (*Node, error) {
	start := time.Now()
	root, value, err := t.eval.CreateNode(state.Clone())
	if err != nil {
		return nil, errors.WithMessage(err, "create root")
	}
	if root == nil {
		panic("evaluator returned a nil node without an error")
	}

	for i := 0; i < t.Simulations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "stopped after %d simulations", i)
		}
		if _, err := root.WalkToLeaf(t.eval); err != nil {
			return nil, errors.WithMessagef(err, "simulation %d", i)
		}
	}

	t.log.Debug().
		Int("simulations", t.Simulations).
		Float64("root_value", value).
		Int("actions", len(root.edges)).
		Int("nodes", root.countNodes()).
		Int("depth", root.depth()).
		Dur("took", time.Since(start)).
		Msg("search complete")
	return root, nil
}

// SearchAll searches every state in its own goroutine with its own tree. newEvaluator is
// called once per state, so that no two trees share an evaluator (or its random source).
// Roots of failed searches are nil; failures are joined into the returned error.
func SearchAll(ctx context.Context, conf Config, states []game.State, newEvaluator func(i int) Evaluator, opts ...Option) ([]*Node, error) {
	roots := make([]*Node, len(states))
	errs := make([]error, len(states))

	var wg sync.WaitGroup
	for i := range states {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			t := New(conf, newEvaluator(i), opts...)
			roots[i], errs[i] = t.search(ctx, states[i])
		}(i)
	}
	wg.Wait()

	var retErr error
	for i, err := range errs {
		if err != nil {
			retErr = multierror.Append(retErr, errors.WithMessagef(err, "state %d", i))
		}
	}
	return roots, retErr
}
