package game

import "github.com/notnil/chess"

// TicTacToeEncoder encodes a board as one value per cell: X is 1, O is -1, empty is 0.
func TicTacToeEncoder(s State) []float32 {
	t := s.(*TicTacToe)
	retVal := make([]float32, TicTacToeCells)
	for i, p := range t.board {
		switch p {
		case X:
			retVal[i] = 1
		case O:
			retVal[i] = -1
		}
	}
	return retVal
}

// ChessFeatures is the length of a ChessEncoder output.
const ChessFeatures = 2 * squares

// ChessEncoder encodes a chess position as a board layer with the signed piece type
// in every square (white positive), followed by a layer filled with the player to move.
func ChessEncoder(s State) []float32 {
	c := s.(*Chess)
	board := make([]float32, squares)
	for sq, piece := range c.Board().SquareMap() {
		if piece == chess.NoPiece {
			continue
		}
		v := float32(piece.Type())
		if piece.Color() == chess.Black {
			v = -v
		}
		board[int8(sq)] = v
	}

	playerLayer := make([]float32, squares)
	next := float32(1)
	if c.Player() == Second {
		next = -1
	}
	for i := range playerLayer {
		playerLayer[i] = next
	}
	return append(board, playerLayer...)
}
