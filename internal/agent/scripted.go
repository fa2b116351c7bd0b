package agent

import (
	"context"
	"math/rand"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

// Random plays a uniformly chosen legal move.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (that *Random) Propose(_ context.Context, _ Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error) {
	moves := reversi.ListValidMoves(mover, opponent)
	if len(moves) == 0 {
		return mover, opponent, apperror.ErrNoAvailableMoves
	}

	chosen := moves[that.rng.Intn(len(moves))] //nolint: gosec // it's ok
	return mover.With(chosen), opponent, nil
}

// Tactics plays a random legal move, favouring the board edges.
type Tactics struct {
	rng *rand.Rand
}

func NewTactics(rng *rand.Rand) *Tactics {
	return &Tactics{rng: rng}
}

func (that *Tactics) Propose(_ context.Context, _ Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error) {
	moves := reversi.ListValidMoves(mover, opponent)
	if len(moves) == 0 {
		return mover, opponent, apperror.ErrNoAvailableMoves
	}

	weights := make([]float64, len(moves))
	total := 0.0
	for i, move := range moves {
		weights[i] = EdgeWeight(move)
		total += weights[i]
	}

	pick := that.rng.Float64() * total //nolint: gosec // it's ok
	for i, move := range moves {
		pick -= weights[i]
		if pick < 0 {
			return mover.With(move), opponent, nil
		}
	}

	return mover.With(moves[len(moves)-1]), opponent, nil
}

// EdgeWeight doubles for an edge row and doubles again for an edge column, so corners weigh 4.
func EdgeWeight(cell entity.Cell) float64 {
	weight := 1.0
	if cell.Row == 0 || cell.Row == entity.BoardSize-1 {
		weight *= 2
	}
	if cell.Col == 0 || cell.Col == entity.BoardSize-1 {
		weight *= 2
	}
	return weight
}
