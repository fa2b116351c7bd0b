package engine

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rocketscienceinc/reversi-backend/internal/agent"
	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func randomAgent(seed int64) agent.Agent {
	return agent.NewRandom(rand.New(rand.NewSource(seed))) //nolint: gosec // it's ok
}

func humanAgent() agent.Agent {
	return agent.NewHuman(time.Millisecond)
}

func grid(cells ...entity.Cell) entity.Grid {
	var result entity.Grid
	for _, cell := range cells {
		result = result.With(cell)
	}
	return result
}

func awaiting(t *testing.T, game *Game, side entity.Side) {
	t.Helper()

	require.Eventually(t, func() bool {
		return game.Snapshot().Status == entity.AwaitingStatus(side)
	}, time.Second, time.Millisecond)
}

func TestGame_NewGame(t *testing.T) {
	// Given: a fresh game
	game := NewGame(discardLogger(), humanAgent(), humanAgent())

	// When: nothing has started
	snapshot := game.Snapshot()

	// Then: the opening position is published as idle
	assert.Equal(t, entity.NewBoard(), snapshot.Board)
	assert.Equal(t, entity.StatusIdle, snapshot.Status)
	assert.False(t, snapshot.Running)
	assert.False(t, game.IsRunning())
}

func TestGame_HumanMoves(t *testing.T) {
	t.Run("Commits a chosen legal cell", func(t *testing.T) {
		// Given: a running human vs human game
		game := NewGame(discardLogger(), humanAgent(), humanAgent())
		require.NoError(t, game.Start(context.Background()))
		defer game.Stop()
		awaiting(t, game, entity.SideFirst)

		// When: the first player chooses (2,4)
		require.NoError(t, game.Choose(entity.Cell{Row: 2, Col: 4}))

		// Then: the move is committed and the second player is asked for input
		awaiting(t, game, entity.SideSecond)
		snapshot := game.Snapshot()
		assert.Equal(t, 1, snapshot.Moves)
		assert.Equal(t, 4, snapshot.Board.Count(entity.SideFirst))
		assert.Equal(t, 1, snapshot.Board.Count(entity.SideSecond))
		assert.True(t, snapshot.Board.First.Has(entity.Cell{Row: 3, Col: 4}))
	})

	t.Run("Ignores an illegal choice", func(t *testing.T) {
		// Given: a running game awaiting the first player
		game := NewGame(discardLogger(), humanAgent(), humanAgent())
		require.NoError(t, game.Start(context.Background()))
		defer game.Stop()
		awaiting(t, game, entity.SideFirst)

		// When: an occupied cell and then an unreachable cell are chosen
		require.NoError(t, game.Choose(entity.Cell{Row: 3, Col: 3}))
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, game.Choose(entity.Cell{Row: 0, Col: 0}))
		time.Sleep(20 * time.Millisecond)

		// Then: nothing is committed and the first player is still asked
		snapshot := game.Snapshot()
		assert.Equal(t, 0, snapshot.Moves)
		assert.Equal(t, entity.NewBoard(), snapshot.Board)
		assert.Equal(t, entity.AwaitingStatus(entity.SideFirst), snapshot.Status)

		// When: a legal cell follows
		require.NoError(t, game.Choose(entity.Cell{Row: 5, Col: 3}))

		// Then: it is committed
		awaiting(t, game, entity.SideSecond)
		assert.Equal(t, 1, game.Snapshot().Moves)
	})
}

func TestGame_Stop(t *testing.T) {
	// Given: a game blocked on human input
	game := NewGame(discardLogger(), humanAgent(), humanAgent())
	require.NoError(t, game.Start(context.Background()))
	awaiting(t, game, entity.SideFirst)

	// When: the game is stopped
	start := time.Now()
	game.Stop()

	// Then: it returns promptly and keeps the last committed board
	assert.Less(t, time.Since(start), time.Second)
	snapshot := game.Snapshot()
	assert.False(t, snapshot.Running)
	assert.False(t, game.IsRunning())
	assert.Equal(t, entity.StatusIdle, snapshot.Status)
	assert.Equal(t, entity.NewBoard(), snapshot.Board)

	// Then: choosing is refused
	require.ErrorIs(t, game.Choose(entity.Cell{Row: 2, Col: 4}), apperror.ErrGameNotRunning)
}

func TestGame_StopOnContextCancel(t *testing.T) {
	game := NewGame(discardLogger(), humanAgent(), humanAgent())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, game.Start(ctx))
	awaiting(t, game, entity.SideFirst)

	cancel()
	game.Wait()

	assert.False(t, game.Snapshot().Running)
}

func TestGame_FullGame(t *testing.T) {
	// Given: two random agents and a finish callback
	var finished atomic.Int32
	var final atomic.Pointer[Snapshot]

	game := NewGame(discardLogger(), randomAgent(1), randomAgent(2),
		WithOnFinish(func(snapshot Snapshot) {
			finished.Add(1)
			final.Store(&snapshot)
		}),
		WithIDGenerator(func() string { return "game-1" }),
	)

	// When: the game runs to the end
	require.NoError(t, game.Start(context.Background()))
	game.Wait()

	// Then: the callback fires once with the final snapshot
	require.Equal(t, int32(1), finished.Load())
	snapshot := game.Snapshot()
	assert.Equal(t, *final.Load(), snapshot)
	assert.Equal(t, "game-1", snapshot.ID)
	assert.True(t, snapshot.Status.IsFinished())
	assert.False(t, snapshot.Running)
	assert.NoError(t, snapshot.Board.Validate())

	outcome, ok := snapshot.Outcome()
	require.True(t, ok)
	first, second := snapshot.Board.Count(entity.SideFirst), snapshot.Board.Count(entity.SideSecond)
	switch {
	case first > second:
		assert.Equal(t, entity.OutcomeFirstWins, outcome)
	case second > first:
		assert.Equal(t, entity.OutcomeSecondWins, outcome)
	default:
		assert.Equal(t, entity.OutcomeDraw, outcome)
	}
}

func TestGame_Forfeit(t *testing.T) {
	// Given: a position where the first player has no legal move
	board := entity.Board{
		First:  grid(entity.Cell{Row: 0, Col: 1}),
		Second: grid(entity.Cell{Row: 0, Col: 0}),
	}
	game := NewGame(discardLogger(), randomAgent(1), randomAgent(2), WithStartingBoard(board))

	// When: the game runs
	require.NoError(t, game.Start(context.Background()))
	game.Wait()

	// Then: the first turn is skipped and the second player captures everything
	snapshot := game.Snapshot()
	assert.Equal(t, entity.StatusSecondWins, snapshot.Status)
	assert.Equal(t, 1, snapshot.Moves)
	assert.Equal(t, entity.SideSecond, snapshot.Turn)
	assert.Equal(t, 0, snapshot.Board.Count(entity.SideFirst))
	assert.Equal(t, grid(
		entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 0, Col: 1}, entity.Cell{Row: 0, Col: 2},
	), snapshot.Board.Second)
}

func TestGame_ImmediateGameOver(t *testing.T) {
	tests := []struct {
		name  string
		board entity.Board
		want  entity.Status
	}{
		{
			name: "first player wins on count",
			board: entity.Board{
				First:  grid(entity.Cell{Row: 0, Col: 0}, entity.Cell{Row: 0, Col: 1}),
				Second: grid(entity.Cell{Row: 7, Col: 7}),
			},
			want: entity.StatusFirstWins,
		},
		{
			name: "equal counts draw",
			board: entity.Board{
				First:  grid(entity.Cell{Row: 0, Col: 0}),
				Second: grid(entity.Cell{Row: 7, Col: 7}),
			},
			want: entity.StatusDraw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a position where neither side can move
			game := NewGame(discardLogger(), humanAgent(), humanAgent(), WithStartingBoard(tt.board))

			// When: the game starts
			require.NoError(t, game.Start(context.Background()))
			game.Wait()

			// Then: it ends at once without asking anyone
			snapshot := game.Snapshot()
			assert.Equal(t, tt.want, snapshot.Status)
			assert.Equal(t, 0, snapshot.Moves)
			assert.Equal(t, tt.board, snapshot.Board)
		})
	}
}

func TestGame_StartTwice(t *testing.T) {
	game := NewGame(discardLogger(), humanAgent(), humanAgent())
	require.NoError(t, game.Start(context.Background()))
	defer game.Stop()

	err := game.Start(context.Background())

	require.ErrorIs(t, err, apperror.ErrGameAlreadyRunning)
}

func TestGame_Restart(t *testing.T) {
	// Given: a game with one committed move
	ids := []string{"a", "b"}
	var next atomic.Int32
	game := NewGame(discardLogger(), humanAgent(), humanAgent(), WithIDGenerator(func() string {
		return ids[next.Add(1)-1]
	}))
	require.NoError(t, game.Start(context.Background()))
	defer game.Stop()
	awaiting(t, game, entity.SideFirst)
	require.NoError(t, game.Choose(entity.Cell{Row: 2, Col: 4}))
	awaiting(t, game, entity.SideSecond)

	// When: the game is restarted
	require.NoError(t, game.Restart(context.Background()))

	// Then: a new game begins from the opening position
	awaiting(t, game, entity.SideFirst)
	snapshot := game.Snapshot()
	assert.Equal(t, "b", snapshot.ID)
	assert.Equal(t, 0, snapshot.Moves)
	assert.Equal(t, entity.NewBoard(), snapshot.Board)
	assert.True(t, snapshot.Running)
}

func TestGame_Choose(t *testing.T) {
	game := NewGame(discardLogger(), humanAgent(), humanAgent())

	t.Run("Rejects cells off the board", func(t *testing.T) {
		require.ErrorIs(t, game.Choose(entity.Cell{Row: -1, Col: 0}), apperror.ErrInvalidCell)
		require.ErrorIs(t, game.Choose(entity.Cell{Row: 0, Col: 8}), apperror.ErrInvalidCell)
	})

	t.Run("Rejects choices while idle", func(t *testing.T) {
		require.ErrorIs(t, game.Choose(entity.Cell{Row: 2, Col: 4}), apperror.ErrGameNotRunning)
	})

	t.Run("Slot is read and cleared once", func(t *testing.T) {
		// no loop is consuming the slot here
		game.running.Store(true)
		defer game.running.Store(false)

		require.NoError(t, game.Choose(entity.Cell{Row: 2, Col: 2}))
		require.NoError(t, game.Choose(entity.Cell{Row: 1, Col: 1}))

		cell, ok := game.TakeChosenCell()
		assert.True(t, ok)
		assert.Equal(t, entity.Cell{Row: 1, Col: 1}, cell)

		_, ok = game.TakeChosenCell()
		assert.False(t, ok)
	})
}

func TestGame_RejectedProposals(t *testing.T) {
	// Given: a first agent that proposes garbage twice before a legal move
	var calls atomic.Int32
	fallback := randomAgent(7)
	first := agent.Func(func(ctx context.Context, game agent.Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error) {
		switch calls.Add(1) {
		case 1:
			return mover.With(entity.Cell{Row: 0, Col: 0}), opponent, nil
		case 2:
			return mover, opponent, apperror.ErrNoAvailableMoves
		default:
			return fallback.Propose(ctx, game, mover, opponent)
		}
	})
	game := NewGame(discardLogger(), first, humanAgent())

	// When: the game runs until the second player is asked
	require.NoError(t, game.Start(context.Background()))
	defer game.Stop()
	awaiting(t, game, entity.SideSecond)

	// Then: the agent was re-invoked until it proposed a valid move
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, game.Snapshot().Moves)
}
