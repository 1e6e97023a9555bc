// Command selfplay generates training examples by self-play and writes them to a parquet file.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/puctree"
	dual "github.com/puctree/dualnet"
	"github.com/puctree/game"
	"github.com/puctree/mcts"
)

var (
	gameFlag        = flag.String("game", "tictactoe", "game to play: tictactoe or chess")
	evaluatorFlag   = flag.String("evaluator", "rollout", "leaf evaluator: rollout or guided")
	episodesFlag    = flag.Int("episodes", 10, "number of self-play games")
	simulationsFlag = flag.Int("simulations", 800, "simulations per move")
	temperatureFlag = flag.Float64("temperature", 1.0, "softmax temperature over visit counts")
	maxExamplesFlag = flag.Int("max_examples", 0, "maximum number of examples kept, 0 keeps all")
	seedFlag        = flag.Int64("seed", 1, "random seed")
	outFlag         = flag.String("out", "examples.parquet", "output parquet file")
	debugFlag       = flag.Bool("debug", false, "log every search")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var (
		newGame  func() game.State
		enc      game.Encoder
		features int
		actions  int
	)
	switch *gameFlag {
	case "tictactoe":
		newGame = func() game.State { return game.NewTicTacToe() }
		enc, features, actions = game.TicTacToeEncoder, game.TicTacToeCells, game.TicTacToeCells
	case "chess":
		newGame = func() game.State { return game.ChessGame() }
		enc, features, actions = game.ChessEncoder, game.ChessFeatures, game.ChessActionSpace
	default:
		log.Fatal().Str("game", *gameFlag).Msg("unknown game")
	}

	conf := puctree.Config{
		Name:        *gameFlag,
		NNConf:      dual.DefaultConf(features, actions),
		MCTSConf:    mcts.Config{Simulations: *simulationsFlag},
		Temperature: *temperatureFlag,
		MaxExamples: *maxExamplesFlag,
		Encoder:     enc,
	}

	opts := []mcts.Option{mcts.WithLogger(log.Logger)}
	var agent *puctree.Agent
	switch *evaluatorFlag {
	case "rollout":
		agent = puctree.NewRolloutAgent("rollout", conf.MCTSConf, *seedFlag, opts...)
	case "guided":
		var err error
		if agent, err = puctree.NewGuidedAgent("guided", conf, uint64(*seedFlag), opts...); err != nil {
			log.Fatal().Err(err).Msg("create guided agent")
		}
	default:
		log.Fatal().Str("evaluator", *evaluatorFlag).Msg("unknown evaluator")
	}
	defer agent.Close()

	az, err := puctree.New(newGame, conf, agent, nil, *seedFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("create self play")
	}
	examples, err := az.Generate(*episodesFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("self play")
	}
	if err := puctree.WriteExamples(*outFlag, examples); err != nil {
		log.Fatal().Err(err).Msg("write examples")
	}
	log.Info().Int("examples", len(examples)).Str("out", *outFlag).Msg("done")
}
