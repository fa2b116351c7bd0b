package entity

import (
	"fmt"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
)

const BoardSize = 8

type Side int

const (
	SideFirst Side = iota
	SideSecond
)

func (that Side) Other() Side {
	if that == SideFirst {
		return SideSecond
	}
	return SideFirst
}

func (that Side) String() string {
	switch that {
	case SideFirst:
		return "first"
	case SideSecond:
		return "second"
	default:
		return fmt.Sprintf("side(%d)", int(that))
	}
}

// Cell is a board position addressed by row and column.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Cell) InBounds() bool {
	return that.Row >= 0 && that.Col >= 0 && that.Row < BoardSize && that.Col < BoardSize
}

func (that Cell) Add(dRow, dCol int) Cell {
	return Cell{Row: that.Row + dRow, Col: that.Col + dCol}
}

func (that Cell) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Grid is the occupancy of one side. It is a value type: assigning or passing
// a Grid copies it, so callers never share backing storage.
type Grid [BoardSize][BoardSize]bool

// Has reports whether the cell is occupied. Out-of-bounds cells are never occupied.
func (that Grid) Has(cell Cell) bool {
	if !cell.InBounds() {
		return false
	}
	return that[cell.Row][cell.Col]
}

// With returns a copy of the grid with the cell occupied.
func (that Grid) With(cell Cell) Grid {
	if cell.InBounds() {
		that[cell.Row][cell.Col] = true
	}
	return that
}

// Without returns a copy of the grid with the cell vacated.
func (that Grid) Without(cell Cell) Grid {
	if cell.InBounds() {
		that[cell.Row][cell.Col] = false
	}
	return that
}

func (that Grid) Count() int {
	count := 0
	for row := range that {
		for col := range that[row] {
			if that[row][col] {
				count++
			}
		}
	}
	return count
}

// Cells lists occupied cells in row-major order.
func (that Grid) Cells() []Cell {
	cells := make([]Cell, 0, that.Count())
	for row := range that {
		for col := range that[row] {
			if that[row][col] {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}
	return cells
}

// Diff returns the cells occupied in that but not in base (added) and the
// cells occupied in base but not in that (removed).
func (that Grid) Diff(base Grid) (added, removed []Cell) {
	for row := range that {
		for col := range that[row] {
			switch {
			case that[row][col] && !base[row][col]:
				added = append(added, Cell{Row: row, Col: col})
			case !that[row][col] && base[row][col]:
				removed = append(removed, Cell{Row: row, Col: col})
			}
		}
	}
	return added, removed
}

// Overlaps reports whether any cell is occupied in both grids.
func (that Grid) Overlaps(other Grid) bool {
	for row := range that {
		for col := range that[row] {
			if that[row][col] && other[row][col] {
				return true
			}
		}
	}
	return false
}

// Transform maps every occupied cell through fn. fn must be a bijection of the board.
func (that Grid) Transform(fn func(Cell) Cell) Grid {
	var out Grid
	for _, cell := range that.Cells() {
		out = out.With(fn(cell))
	}
	return out
}

// Features flattens the grid row-major into 0/1 values.
func (that Grid) Features() []float64 {
	features := make([]float64, 0, BoardSize*BoardSize)
	for row := range that {
		for col := range that[row] {
			if that[row][col] {
				features = append(features, 1)
			} else {
				features = append(features, 0)
			}
		}
	}
	return features
}

// Board is the pair of occupancy grids, one per side.
type Board struct {
	First  Grid `json:"first"`
	Second Grid `json:"second"`
}

// NewBoard returns the starting arrangement: the four center cells split
// diagonally between the sides.
func NewBoard() Board {
	var board Board
	board.First = board.First.With(Cell{Row: 3, Col: 3}).With(Cell{Row: 4, Col: 4})
	board.Second = board.Second.With(Cell{Row: 3, Col: 4}).With(Cell{Row: 4, Col: 3})
	return board
}

func (that Board) Of(side Side) Grid {
	if side == SideSecond {
		return that.Second
	}
	return that.First
}

// WithSide returns a copy of the board with side's grid replaced.
func (that Board) WithSide(side Side, grid Grid) Board {
	if side == SideSecond {
		that.Second = grid
	} else {
		that.First = grid
	}
	return that
}

// FromPerspective builds a board from a mover/opponent pair.
func FromPerspective(side Side, mover, opponent Grid) Board {
	return Board{}.WithSide(side, mover).WithSide(side.Other(), opponent)
}

func (that Board) IsEmpty(cell Cell) bool {
	return !that.First.Has(cell) && !that.Second.Has(cell)
}

// Owner returns the side occupying the cell, or false if it is empty.
func (that Board) Owner(cell Cell) (Side, bool) {
	switch {
	case that.First.Has(cell):
		return SideFirst, true
	case that.Second.Has(cell):
		return SideSecond, true
	default:
		return SideFirst, false
	}
}

func (that Board) Count(side Side) int {
	return that.Of(side).Count()
}

func (that Board) Occupied() int {
	return that.First.Count() + that.Second.Count()
}

// Validate checks that no cell belongs to both sides.
func (that Board) Validate() error {
	for _, cell := range that.First.Cells() {
		if that.Second.Has(cell) {
			return fmt.Errorf("%w: cell %s", apperror.ErrOverlappingOccupancy, cell)
		}
	}
	return nil
}
