package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/reversi-backend/internal/agent"
	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

type Option func(*Game)

// WithOnFinish registers a callback run by the loop with the final snapshot.
// It must not call Start, Stop or Restart synchronously.
func WithOnFinish(fn func(Snapshot)) Option {
	return func(g *Game) {
		g.onFinish = fn
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(g *Game) {
		g.newID = fn
	}
}

// WithStartingBoard replaces the standard opening position.
func WithStartingBoard(board entity.Board) Option {
	return func(g *Game) {
		g.startBoard = board
	}
}

// Game owns the canonical board. Only its worker goroutine writes it once started;
// readers go through Snapshot.
type Game struct {
	logger     *slog.Logger
	agents     [2]agent.Agent
	onFinish   func(Snapshot)
	newID      func() string
	startBoard entity.Board

	snapshot atomic.Pointer[Snapshot]
	chosen   atomic.Pointer[entity.Cell]
	running  atomic.Bool
	version  atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewGame(logger *slog.Logger, first, second agent.Agent, opts ...Option) *Game {
	game := &Game{
		logger:     logger.With("component", "engine"),
		agents:     [2]agent.Agent{first, second},
		newID:      uuid.NewString,
		startBoard: entity.NewBoard(),
	}

	for _, opt := range opts {
		opt(game)
	}

	game.publish(Snapshot{Board: game.startBoard, Turn: entity.SideFirst})

	return game
}

// Start resets the board and launches the rules loop.
func (that *Game) Start(ctx context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.running.Load() {
		return apperror.ErrGameAlreadyRunning
	}

	// a finished worker may still be running its callback
	if that.done != nil {
		<-that.done
	}

	id := that.newID()
	that.chosen.Store(nil)
	that.publish(Snapshot{ID: id, Board: that.startBoard, Turn: entity.SideFirst, Running: true})
	that.running.Store(true)

	workerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	that.cancel = cancel
	that.done = done

	go func() {
		defer close(done)
		defer cancel()
		that.run(workerCtx, id)
	}()

	that.logger.Info("game started", "game", id)

	return nil
}

// Stop interrupts the loop and waits for it to exit. The board keeps its last committed state.
func (that *Game) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.running.Store(false)
	if that.cancel != nil {
		that.cancel()
	}

	if that.done != nil {
		<-that.done
	}
}

func (that *Game) Restart(ctx context.Context) error {
	that.Stop()
	return that.Start(ctx)
}

// Wait blocks until the current loop exits.
func (that *Game) Wait() {
	that.mu.Lock()
	done := that.done
	that.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (that *Game) Snapshot() Snapshot {
	return *that.snapshot.Load()
}

func (that *Game) IsRunning() bool {
	return that.running.Load()
}

// Choose stores the cell picked by the interaction layer for the side awaiting input.
// An unconsumed earlier choice is overwritten.
func (that *Game) Choose(cell entity.Cell) error {
	if !cell.InBounds() {
		return apperror.ErrInvalidCell
	}

	if !that.running.Load() {
		return apperror.ErrGameNotRunning
	}

	that.chosen.Store(&cell)

	return nil
}

func (that *Game) TakeChosenCell() (entity.Cell, bool) {
	cell := that.chosen.Swap(nil)
	if cell == nil {
		return entity.Cell{}, false
	}
	return *cell, true
}

func (that *Game) publish(snapshot Snapshot) Snapshot {
	snapshot.Version = that.version.Add(1)
	that.snapshot.Store(&snapshot)
	return snapshot
}
