package agent

import (
	"context"

	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

// Game is what an agent may observe of the game it plays in.
type Game interface {
	IsRunning() bool
	// TakeChosenCell returns and clears the cell last chosen through the interaction boundary.
	TakeChosenCell() (entity.Cell, bool)
}

// Agent resolves one side's turn into a proposed pair of grids. The proposal is
// validated by the caller; agents are free to return anything.
type Agent interface {
	Propose(ctx context.Context, game Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error)
}

// Func adapts a plain function to Agent.
type Func func(ctx context.Context, game Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error)

func (that Func) Propose(ctx context.Context, game Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error) {
	return that(ctx, game, mover, opponent)
}

// Finisher is implemented by agents that want the final score of each game.
// label is the agent's cell count minus its opponent's.
type Finisher interface {
	Finish(label float64)
}

// Learner is implemented by agents that improve from the games they finished.
type Learner interface {
	// Learn returns the number of examples it trained on.
	Learn() int
}
