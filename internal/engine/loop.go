package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

type phase int

const (
	phaseStartOfTurn phase = iota
	phaseAwaitingProposal
	phaseCommitted
	phaseCheckTermination
	phaseGameOver
)

func (that phase) String() string {
	switch that {
	case phaseStartOfTurn:
		return "start-of-turn"
	case phaseAwaitingProposal:
		return "awaiting-proposal"
	case phaseCommitted:
		return "committed"
	case phaseCheckTermination:
		return "check-termination"
	case phaseGameOver:
		return "game-over"
	default:
		return fmt.Sprintf("phase(%d)", int(that))
	}
}

// turn is the loop's private state; it is published as a Snapshot after each change.
type turn struct {
	id       string
	board    entity.Board
	side     entity.Side
	moves    int
	proposal entity.Board
}

func (that turn) snapshot(status entity.Status, running bool) Snapshot {
	return Snapshot{
		ID:      that.id,
		Board:   that.board,
		Turn:    that.side,
		Status:  status,
		Running: running,
		Moves:   that.moves,
	}
}

func (that *Game) run(ctx context.Context, id string) {
	log := that.logger.With("game", id)

	state := turn{id: id, board: that.startBoard, side: entity.SideFirst}
	current := phaseStartOfTurn

	for {
		if !that.running.Load() || ctx.Err() != nil {
			that.publish(state.snapshot(entity.StatusIdle, false))
			log.Info("game stopped", "moves", state.moves, "phase", current)
			return
		}

		switch current {
		case phaseStartOfTurn:
			if reversi.HasMoves(state.board, state.side) {
				current = phaseAwaitingProposal
				continue
			}

			log.Debug("no legal move, turn forfeited", "side", state.side)
			current = phaseCheckTermination

		case phaseAwaitingProposal:
			that.chosen.Store(nil)
			that.publish(state.snapshot(entity.AwaitingStatus(state.side), true))

			proposal, ok := that.awaitProposal(ctx, log, state.board, state.side)
			if !ok {
				continue
			}

			state.proposal = proposal
			current = phaseCommitted

		case phaseCommitted:
			state.board = commit(state.proposal, state.board, state.side)
			state.moves++
			that.publish(state.snapshot(entity.StatusIdle, true))

			log.Debug("move committed", "side", state.side, "moves", state.moves,
				"first", state.board.Count(entity.SideFirst), "second", state.board.Count(entity.SideSecond))
			current = phaseCheckTermination

		case phaseCheckTermination:
			if reversi.IsTerminal(state.board) {
				current = phaseGameOver
				continue
			}

			state.side = state.side.Other()
			current = phaseStartOfTurn

		case phaseGameOver:
			outcome := reversi.DetermineOutcome(state.board)

			that.running.Store(false)
			final := that.publish(state.snapshot(outcome.Status(), false))

			log.Info("game over", "outcome", outcome, "moves", state.moves,
				"first", state.board.Count(entity.SideFirst), "second", state.board.Count(entity.SideSecond))

			if that.onFinish != nil {
				that.onFinish(final)
			}
			return
		}
	}
}

// awaitProposal re-invokes the side's agent until it returns a valid proposal.
// It returns false when the game is stopped first.
func (that *Game) awaitProposal(ctx context.Context, log *slog.Logger, board entity.Board, side entity.Side) (entity.Board, bool) {
	mover := that.agents[side]

	for {
		if !that.running.Load() || ctx.Err() != nil {
			return entity.Board{}, false
		}

		proposedMover, proposedOpponent, err := mover.Propose(ctx, that, board.Of(side), board.Of(side.Other()))

		if !that.running.Load() || ctx.Err() != nil {
			return entity.Board{}, false
		}

		if err != nil {
			if errors.Is(err, apperror.ErrGameStopped) {
				return entity.Board{}, false
			}

			log.Debug("agent failed, proposal discarded", "side", side, "error", err)
			continue
		}

		proposal := entity.FromPerspective(side, proposedMover, proposedOpponent)
		if !reversi.CheckValid(proposal, board, side) {
			log.Debug("invalid proposal discarded", "side", side)
			continue
		}

		return proposal, true
	}
}

// commit panics if the result breaks disjointness: validated commits can never produce that.
func commit(proposal, board entity.Board, side entity.Side) entity.Board {
	next := reversi.Commit(proposal, board, side)
	if err := next.Validate(); err != nil {
		panic(fmt.Errorf("commit for %s side: %w", side, err))
	}
	return next
}
