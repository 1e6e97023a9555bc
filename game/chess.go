package game

import (
	"fmt"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

const (
	RowNum = 8
	ColNum = 8

	squares = RowNum * ColNum
)

// ChessActionSpace is one slot per (from, to) square pair. Promotions always promote to a queen.
const ChessActionSpace = squares * squares

// Chess adapts a notnil/chess game to State. White is First.
type Chess struct {
	g *chess.Game
}

// ChessGame returns a game at the standard starting position.
func ChessGame() *Chess {
	return &Chess{g: chess.NewGame()}
}

// ChessFromFEN returns a game starting at the given position.
func ChessFromFEN(fen string) (*Chess, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrapf(err, "parse FEN %q", fen)
	}
	return &Chess{g: chess.NewGame(opt)}, nil
}

// ChessAction encodes a move as its (from, to) pair.
func ChessAction(m *chess.Move) Action {
	return Action(int(m.S1())*squares + int(m.S2()))
}

// Board returns the board of the current position.
func (c *Chess) Board() *chess.Board { return c.g.Position().Board() }

func (c *Chess) ActionSpace() int { return ChessActionSpace }

func (c *Chess) Actions() []Action {
	if c.g.Outcome() != chess.NoOutcome {
		return nil
	}
	moves := c.g.ValidMoves()
	retVal := make([]Action, 0, len(moves))
	for _, m := range moves {
		if promo := m.Promo(); promo != chess.NoPieceType && promo != chess.Queen {
			continue
		}
		retVal = append(retVal, ChessAction(m))
	}
	return retVal
}

func (c *Chess) Apply(a Action) {
	m := c.move(a)
	if m == nil {
		panic(fmt.Sprintf("action %d is not legal in %v", a, c.g.Position()))
	}
	if err := c.g.Move(m); err != nil {
		panic(fmt.Sprintf("%+v", errors.Wrapf(err, "apply action %d", a)))
	}
}

func (c *Chess) move(a Action) *chess.Move {
	for _, m := range c.g.ValidMoves() {
		if promo := m.Promo(); promo != chess.NoPieceType && promo != chess.Queen {
			continue
		}
		if ChessAction(m) == a {
			return m
		}
	}
	return nil
}

func (c *Chess) Status() Status {
	switch c.g.Outcome() {
	case chess.WhiteWon:
		return WonBy(First)
	case chess.BlackWon:
		return WonBy(Second)
	case chess.Draw:
		return Drawn()
	}
	return Ongoing()
}

func (c *Chess) Player() Player { return colorToPlayer(c.g.Position().Turn()) }

func (c *Chess) ExplorationFactor() float64 { return DefaultExplorationFactor }

// Clone copies the game through its FEN. Move history (and with it repetition
// tracking) does not survive the copy. The 75 move rule still bounds every game.
func (c *Chess) Clone() State {
	opt, err := chess.FEN(c.g.Position().String())
	if err != nil {
		panic(fmt.Sprintf("%+v", errors.Wrap(err, "clone")))
	}
	return &Chess{g: chess.NewGame(opt)}
}

func (c *Chess) String() string { return c.g.Position().Board().Draw() }

func colorToPlayer(c chess.Color) Player {
	switch c {
	case chess.White:
		return First
	case chess.Black:
		return Second
	}
	return NoPlayer
}
