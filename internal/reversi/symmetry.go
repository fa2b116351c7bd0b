package reversi

import "github.com/rocketscienceinc/reversi-backend/internal/entity"

const last = entity.BoardSize - 1

// Symmetry is one of the eight transforms mapping the square board onto itself.
type Symmetry func(entity.Cell) entity.Cell

var Symmetries = []Symmetry{
	func(c entity.Cell) entity.Cell { return c },
	func(c entity.Cell) entity.Cell { return entity.Cell{Row: last - c.Row, Col: c.Col} },
	func(c entity.Cell) entity.Cell { return entity.Cell{Row: c.Row, Col: last - c.Col} },
	func(c entity.Cell) entity.Cell { return entity.Cell{Row: last - c.Row, Col: last - c.Col} },
	func(c entity.Cell) entity.Cell { return entity.Cell{Row: c.Col, Col: c.Row} },
	func(c entity.Cell) entity.Cell { return entity.Cell{Row: last - c.Col, Col: c.Row} },
	func(c entity.Cell) entity.Cell { return entity.Cell{Row: c.Col, Col: last - c.Row} },
	func(c entity.Cell) entity.Cell { return entity.Cell{Row: last - c.Col, Col: last - c.Row} },
}

func (that Symmetry) Board(board entity.Board) entity.Board {
	return entity.Board{
		First:  board.First.Transform(that),
		Second: board.Second.Transform(that),
	}
}
