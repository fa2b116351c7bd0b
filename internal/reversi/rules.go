package reversi

import (
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

var directions = [8][2]int{
	{1, 0},
	{0, 1},
	{-1, 0},
	{0, -1},
	{1, 1},
	{1, -1},
	{-1, 1},
	{-1, -1},
}

// ListValidMoves returns every empty cell where the mover would reverse at
// least one opposing piece, in row-major order.
func ListValidMoves(mover, opponent entity.Grid) []entity.Cell {
	var moves []entity.Cell
	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			cell := entity.Cell{Row: row, Col: col}
			if mover.Has(cell) || opponent.Has(cell) {
				continue
			}

			if hasOutcome(mover.With(cell), opponent, mover, opponent) {
				moves = append(moves, cell)
			}
		}
	}
	return moves
}

// MoveOutcome computes the result of placing the single cell that is present in
// moverAfter but not in moverBefore: every opponent run bracketed between the new
// cell and a mover-owned cell is reversed. When the grids do not differ by exactly
// one added cell the inputs are returned unchanged.
func MoveOutcome(moverAfter, opponentAfter, moverBefore, _ entity.Grid) (entity.Grid, entity.Grid) {
	added, removed := moverAfter.Diff(moverBefore)
	if len(added) != 1 || len(removed) != 0 {
		return moverAfter, opponentAfter
	}

	mover, opponent := moverAfter, opponentAfter
	origin := added[0]
	for _, delta := range directions {
		for flipRun(&mover, &opponent, origin, delta[0], delta[1]) {
		}
	}

	return mover, opponent
}

// flipRun walks from origin along one direction and reverses the opponent run if
// a mover-owned cell closes it. It reports whether anything was flipped.
func flipRun(mover, opponent *entity.Grid, origin entity.Cell, dRow, dCol int) bool {
	var run []entity.Cell
	cell := origin.Add(dRow, dCol)
	for cell.InBounds() && opponent.Has(cell) {
		run = append(run, cell)
		cell = cell.Add(dRow, dCol)
	}

	if len(run) == 0 || !mover.Has(cell) {
		return false
	}

	for _, flipped := range run {
		*mover = mover.With(flipped)
		*opponent = opponent.Without(flipped)
	}
	return true
}

// hasOutcome runs the outcome in a sandbox and reports whether any piece was reversed.
func hasOutcome(moverAfter, opponentAfter, moverBefore, opponentBefore entity.Grid) bool {
	mover, opponent := MoveOutcome(moverAfter, opponentAfter, moverBefore, opponentBefore)
	return mover != moverAfter || opponent != opponentAfter
}

// CheckValid accepts a proposed board for side only if the other side is untouched,
// exactly one cell was added for side on a cell the opponent did not hold, and the
// placement reverses at least one piece.
func CheckValid(after, before entity.Board, side entity.Side) bool {
	if after.Of(side.Other()) != before.Of(side.Other()) {
		return false
	}

	added, removed := after.Of(side).Diff(before.Of(side))
	if len(added) != 1 || len(removed) != 0 {
		return false
	}

	if before.Of(side.Other()).Has(added[0]) {
		return false
	}

	return hasOutcome(after.Of(side), after.Of(side.Other()), before.Of(side), before.Of(side.Other()))
}

// Play places cell for side and returns the resulting board, or false if the move is illegal.
func Play(board entity.Board, side entity.Side, cell entity.Cell) (entity.Board, bool) {
	if !cell.InBounds() || !board.IsEmpty(cell) {
		return board, false
	}

	proposal := board.WithSide(side, board.Of(side).With(cell))
	if !CheckValid(proposal, board, side) {
		return board, false
	}

	return Commit(proposal, board, side), true
}

// Commit applies the outcome of an accepted proposal.
func Commit(proposal, before entity.Board, side entity.Side) entity.Board {
	mover, opponent := MoveOutcome(
		proposal.Of(side), proposal.Of(side.Other()),
		before.Of(side), before.Of(side.Other()),
	)
	return entity.FromPerspective(side, mover, opponent)
}

func HasMoves(board entity.Board, side entity.Side) bool {
	return len(ListValidMoves(board.Of(side), board.Of(side.Other()))) > 0
}

// IsTerminal reports whether neither side can move.
func IsTerminal(board entity.Board) bool {
	return !HasMoves(board, entity.SideFirst) && !HasMoves(board, entity.SideSecond)
}
