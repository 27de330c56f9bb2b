package game

import "github.com/pkg/errors"

// NumPositions is the fixed number of cells on a Take It Easy board.
const NumPositions = 19

// Plateau is the fixed 19-cell hexagonal board. The zero value is an empty
// board. Plateau is a value type; Place returns a new Plateau rather than
// mutating the receiver, so a *Plateau seen by one goroutine is never changed
// under it by another.
type Plateau [NumPositions]Tile

// Errors returned by kernel operations. Compare with errors.Is.
var (
	ErrPositionOccupied   = errors.New("position occupied")
	ErrPositionOutOfRange = errors.New("position out of range")
)

// Place returns a copy of p with tile placed at position. It fails with
// ErrPositionOutOfRange if position is not in [0, NumPositions), and with
// ErrPositionOccupied if the slot is already filled.
func Place(p Plateau, position int, tile Tile) (Plateau, error) {
	if position < 0 || position >= NumPositions {
		return p, errors.Wrapf(ErrPositionOutOfRange, "position %d", position)
	}
	if !p[position].IsEmpty() {
		return p, errors.Wrapf(ErrPositionOccupied, "position %d", position)
	}
	p[position] = tile
	return p, nil
}

// LegalMoves returns the ascending-order sequence of empty positions on p.
// It takes p by reference: callers (in particular MCTS) invoke this many
// times per simulation and a board copy per call would be wasteful.
func LegalMoves(p *Plateau) []int {
	moves := make([]int, 0, NumPositions)
	for i, t := range p {
		if t.IsEmpty() {
			moves = append(moves, i)
		}
	}
	return moves
}

// NumPlaced returns how many positions of p are filled.
func NumPlaced(p *Plateau) int {
	n := 0
	for _, t := range p {
		if !t.IsEmpty() {
			n++
		}
	}
	return n
}
