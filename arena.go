package puctree

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/puctree/game"
	"github.com/puctree/mcts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Arena represents a game arena between two agents.
type Arena struct {
	r       *rand.Rand
	newGame func() game.State
	enc     game.Encoder

	// A plays first on even games, B on odd games.
	A, B *Agent

	temperature float64
	logger      zerolog.Logger

	name       string
	gameNumber int
}

// MakeArena makes an arena given a game factory. b may be nil if only SelfPlay is used.
func MakeArena(newGame func() game.State, a, b *Agent, conf Config, seed int64) Arena {
	name := conf.Name
	if name == "" {
		name = "UNKNOWN GAME"
	}
	return Arena{
		r:           rand.New(rand.NewSource(seed)),
		newGame:     newGame,
		enc:         conf.Encoder,
		A:           a,
		B:           b,
		temperature: conf.Temperature,
		logger:      log.Logger.With().Str("game", name).Logger(),
		name:        name,
	}
}

// SetLogger replaces the arena logger.
func (a *Arena) SetLogger(l zerolog.Logger) { a.logger = l }

// SelfPlay lets agent A generate examples by playing a game against itself. Every
// non-terminal position yields one example; moves are sampled from the improved policy.
func (a *Arena) SelfPlay() (examples []Example, err error) {
	if a.enc == nil {
		return nil, errors.New("self play needs an encoder")
	}

	state := a.newGame()
	var movers []game.Player
	for !state.Status().IsTerminal() {
		root, err := a.A.Search(state)
		if err != nil {
			return nil, errors.WithMessagef(err, "move %d", len(examples))
		}
		policy := ImprovedPolicy(root.Stats(), state.ActionSpace(), a.temperature)
		examples = append(examples, Example{
			Board:  a.enc(state),
			Policy: policy,
		})
		movers = append(movers, state.Player())

		best := SampleAction(policy, a.r)
		a.logger.Debug().
			Int("move", len(examples)).
			Stringer("player", state.Player()).
			Int32("action", int32(best)).
			Msg("self play move")
		state.Apply(best)
	}

	for i := range examples {
		examples[i].Value = float32(mcts.ScoreTerminal(state, movers[i]))
	}
	a.logger.Info().
		Int("examples", len(examples)).
		Stringer("outcome", state.Status().Outcome).
		Stringer("winner", state.Status().Winner).
		Msg("self play finished")
	return examples, nil
}

// Play plays a game between A and B, records the result in their statistics and returns the
// winner (NoPlayer on a draw). Each agent plays its most visited action.
func (a *Arena) Play() (game.Player, error) {
	if a.B == nil {
		return game.NoPlayer, errors.New("play needs two agents")
	}
	first, second := a.A, a.B
	if a.gameNumber%2 == 1 {
		first, second = second, first
	}
	first.Player, second.Player = game.First, game.Second
	a.gameNumber++

	state := a.newGame()
	for !state.Status().IsTerminal() {
		current := first
		if state.Player() == game.Second {
			current = second
		}
		root, err := current.Search(state)
		if err != nil {
			return game.NoPlayer, err
		}
		state.Apply(BestAction(root.Stats()))
	}

	status := state.Status()
	switch {
	case status.Outcome == game.Draw:
		first.Draw++
		second.Draw++
	case status.Winner == first.Player:
		first.Wins++
		second.Loss++
	default:
		second.Wins++
		first.Loss++
	}
	a.logger.Info().
		Int("game_number", a.gameNumber).
		Str("first", first.Name).
		Str("second", second.Name).
		Stringer("outcome", status.Outcome).
		Stringer("winner", status.Winner).
		Msg("arena game finished")
	return status.Winner, nil
}

// GameNumber returns the number of games played by Play.
func (a *Arena) GameNumber() int { return a.gameNumber }

// Name of the game
func (a *Arena) Name() string { return a.name }
