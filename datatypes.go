package puctree

import (
	dual "github.com/puctree/dualnet"
	"github.com/puctree/game"
	"github.com/puctree/mcts"
)

// Config for the self-play structure.
// It holds attributes that impact the search and the predictor
// as well as the encoder that turns states into predictor input.
type Config struct {
	Name     string      `json:"name"`
	NNConf   dual.Config `json:"nn_conf"`
	MCTSConf mcts.Config `json:"mcts_conf"`

	// Temperature of the softmax over root visit counts. Zero or less plays the most visited action.
	Temperature float64 `json:"temperature"`
	// maximum number of examples kept by Generate, 0 keeps all
	MaxExamples int `json:"max_examples"`

	// extensions
	Encoder game.Encoder `json:"-"`
}

func (c Config) IsValid() bool {
	return c.MCTSConf.IsValid() && c.MaxExamples >= 0
}

// Example is a representation of a training example.
type Example struct {
	Board  []float32 `parquet:"board"`
	Policy []float32 `parquet:"policy"`
	Value  float32   `parquet:"value"`
}
