package game

import (
	"bytes"
	"fmt"
)

const (
	TicTacToeSize  = 3
	TicTacToeCells = TicTacToeSize * TicTacToeSize
)

// X moves first.
const (
	X = First
	O = Second
)

// rows, columns, diagonals
var ticTacToeLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToe is the 3x3 game. Cell (row, col) is action row*3+col.
type TicTacToe struct {
	board [TicTacToeCells]Player
	turn  Player
}

// NewTicTacToe returns the empty board with X to move.
func NewTicTacToe() *TicTacToe {
	return &TicTacToe{turn: X}
}

// Cell returns the owner of a cell, NoPlayer if it is empty.
func (t *TicTacToe) Cell(row, col int) Player { return t.board[row*TicTacToeSize+col] }

func (t *TicTacToe) ActionSpace() int { return TicTacToeCells }

func (t *TicTacToe) Actions() []Action {
	if t.winner() != NoPlayer {
		return nil
	}
	retVal := make([]Action, 0, TicTacToeCells)
	for i, p := range t.board {
		if p == NoPlayer {
			retVal = append(retVal, Action(i))
		}
	}
	return retVal
}

func (t *TicTacToe) Apply(a Action) {
	t.board[a] = t.turn
	t.turn = t.turn.Opponent()
}

func (t *TicTacToe) Status() Status {
	if w := t.winner(); w != NoPlayer {
		return WonBy(w)
	}
	for _, p := range t.board {
		if p == NoPlayer {
			return Ongoing()
		}
	}
	return Drawn()
}

func (t *TicTacToe) Player() Player { return t.turn }

func (t *TicTacToe) ExplorationFactor() float64 { return DefaultExplorationFactor }

func (t *TicTacToe) Clone() State {
	c := *t
	return &c
}

func (t *TicTacToe) winner() Player {
	for _, l := range ticTacToeLines {
		p := t.board[l[0]]
		if p != NoPlayer && p == t.board[l[1]] && p == t.board[l[2]] {
			return p
		}
	}
	return NoPlayer
}

func (t *TicTacToe) String() string {
	var buf bytes.Buffer
	for i, p := range t.board {
		switch p {
		case X:
			buf.WriteByte('X')
		case O:
			buf.WriteByte('O')
		default:
			buf.WriteString("•")
		}
		if i%TicTacToeSize == TicTacToeSize-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// Format implements fmt.Formatter. %v prints the board, %+v adds the player to move.
func (t *TicTacToe) Format(s fmt.State, c rune) {
	fmt.Fprint(s, t.String())
	if s.Flag('+') {
		fmt.Fprintf(s, "To move: %v\n", t.turn)
	}
}
