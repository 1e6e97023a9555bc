// Package puctree plays two-player zero-sum games with PUCT Monte Carlo Tree Search and
// turns the searches into training examples for a policy/value predictor.
package puctree

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/puctree/game"
)

// AZ is the top level structure and the entry point of the API.
// It wraps an Arena and the configuration of the example generation.
type AZ struct {
	// state
	Arena

	// config
	conf Config
	r    *rand.Rand
}

// New creates the structure. a generates self-play examples; b is its opponent in Compete and may be nil.
func New(newGame func() game.State, conf Config, a, b *Agent, seed int64) (*AZ, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("config is not valid: %+v", conf)
	}
	if a == nil {
		return nil, errors.New("need at least one agent")
	}
	return &AZ{
		Arena: MakeArena(newGame, a, b, conf, seed),
		conf:  conf,
		r:     rand.New(rand.NewSource(seed + 1)),
	}, nil
}

// Generate self-plays for episodes games and returns the examples, shuffled and cut to MaxExamples.
func (a *AZ) Generate(episodes int) ([]Example, error) {
	var ex []Example
	for e := 0; e < episodes; e++ {
		a.logger.Debug().Int("episode", e).Msg("self play")
		exs, err := a.SelfPlay()
		if err != nil {
			return nil, errors.WithMessagef(err, "episode %d", e)
		}
		ex = append(ex, exs...)
	}

	a.shuffleExamples(ex)
	if a.conf.MaxExamples > 0 && len(ex) > a.conf.MaxExamples {
		ex = ex[:a.conf.MaxExamples]
	}
	return ex, nil
}

// Compete resets the statistics of both agents and plays games arena games between them.
func (a *AZ) Compete(games int) error {
	if a.B == nil {
		return errors.New("compete needs two agents")
	}
	a.A.resetStats()
	a.B.resetStats()
	for i := 0; i < games; i++ {
		if _, err := a.Play(); err != nil {
			return errors.WithMessagef(err, "game %d", i)
		}
	}
	a.logger.Info().
		Str("a", a.A.Name).Float32("a_wins", a.A.Wins).Float32("a_loss", a.A.Loss).Float32("a_draw", a.A.Draw).
		Str("b", a.B.Name).Float32("b_wins", a.B.Wins).Float32("b_loss", a.B.Loss).Float32("b_draw", a.B.Draw).
		Msg("competition finished")
	return nil
}

func (a *AZ) shuffleExamples(examples []Example) {
	a.r.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
}
