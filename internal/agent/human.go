package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

const DefaultPollInterval = 100 * time.Millisecond

// Human waits for a cell chosen through the interaction boundary.
type Human struct {
	pollInterval time.Duration
}

func NewHuman(pollInterval time.Duration) *Human {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Human{pollInterval: pollInterval}
}

// Propose polls the game's chosen-cell slot until a cell arrives or the game stops.
func (that *Human) Propose(ctx context.Context, game Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error) {
	ticker := time.NewTicker(that.pollInterval)
	defer ticker.Stop()

	for {
		if !game.IsRunning() {
			return mover, opponent, apperror.ErrGameStopped
		}

		if cell, ok := game.TakeChosenCell(); ok && cell.InBounds() {
			return mover.With(cell), opponent, nil
		}

		select {
		case <-ctx.Done():
			return mover, opponent, fmt.Errorf("%w: %w", apperror.ErrGameStopped, ctx.Err())
		case <-ticker.C:
		}
	}
}

// IsHuman reports whether the agent needs interactive input.
func IsHuman(agent Agent) bool {
	_, ok := agent.(*Human)
	return ok
}
