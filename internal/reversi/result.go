package reversi

import "github.com/rocketscienceinc/reversi-backend/internal/entity"

// DetermineOutcome compares the number of occupied cells per side.
func DetermineOutcome(board entity.Board) entity.Outcome {
	first, second := board.Count(entity.SideFirst), board.Count(entity.SideSecond)
	switch {
	case first > second:
		return entity.OutcomeFirstWins
	case second > first:
		return entity.OutcomeSecondWins
	default:
		return entity.OutcomeDraw
	}
}
