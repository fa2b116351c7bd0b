package engine

import "github.com/rocketscienceinc/reversi-backend/internal/entity"

// Snapshot is an immutable view of a game, published as a whole after every change.
type Snapshot struct {
	ID      string        `json:"id"`
	Board   entity.Board  `json:"board"`
	Turn    entity.Side   `json:"turn"`
	Status  entity.Status `json:"status"`
	Running bool          `json:"running"`
	Moves   int           `json:"moves"`
	Version uint64        `json:"version"`
}

// Outcome is only meaningful once Status is final.
func (that Snapshot) Outcome() (entity.Outcome, bool) {
	switch that.Status {
	case entity.StatusFirstWins:
		return entity.OutcomeFirstWins, true
	case entity.StatusSecondWins:
		return entity.OutcomeSecondWins, true
	case entity.StatusDraw:
		return entity.OutcomeDraw, true
	default:
		return "", false
	}
}
