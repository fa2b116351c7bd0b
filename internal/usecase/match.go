package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/reversi-backend/internal/agent"
	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

type resultRepo interface {
	Save(ctx context.Context, result *entity.MatchResult) error
}

// Contender is an agent taking part in a match, with the kind it was built from.
type Contender struct {
	Kind  string
	Agent agent.Agent
}

// MatchRunner plays unattended games back to back between two agents.
type MatchRunner struct {
	logger     *slog.Logger
	first      Contender
	second     Contender
	resultRepo resultRepo
}

// NewMatchRunner builds a runner. resultRepo may be nil when results are not stored.
func NewMatchRunner(logger *slog.Logger, first, second Contender, resultRepo resultRepo) *MatchRunner {
	return &MatchRunner{
		logger: logger.With("component", "match"),
		first:  first,
		second: second,

		resultRepo: resultRepo,
	}
}

// Play runs the given number of games. On cancellation it returns the tally of the games finished so far.
func (that *MatchRunner) Play(ctx context.Context, games int) (entity.Tally, error) {
	var tally entity.Tally

	if agent.IsHuman(that.first.Agent) || agent.IsHuman(that.second.Agent) {
		return tally, apperror.ErrHumanInBatch
	}

	game := engine.NewGame(that.logger, that.first.Agent, that.second.Agent)

	for played := 0; played < games; played++ {
		if err := ctx.Err(); err != nil {
			return tally, fmt.Errorf("match interrupted after %d games: %w", played, err)
		}

		if err := game.Start(ctx); err != nil {
			return tally, fmt.Errorf("failed to start game: %w", err)
		}
		game.Wait()

		snapshot := game.Snapshot()
		outcome, ok := snapshot.Outcome()
		if !ok {
			return tally, fmt.Errorf("match interrupted after %d games: %w", played, context.Cause(ctx))
		}

		tally.Add(outcome)
		Settle(that.logger, snapshot.Board, that.first, that.second)

		if err := that.save(ctx, snapshot); err != nil {
			return tally, err
		}

		that.logger.Debug("game finished", "game", snapshot.ID, "outcome", outcome,
			"first", snapshot.Board.Count(entity.SideFirst), "second", snapshot.Board.Count(entity.SideSecond))
	}

	that.logger.Info("match finished", "games", tally.Games(),
		"first_wins", tally.FirstWins, "second_wins", tally.SecondWins, "draws", tally.Draws)

	return tally, nil
}

// Settle reports each side's final margin to agents that learn from it, then lets them
// train. It must run between games, while neither agent is proposing.
func Settle(logger *slog.Logger, board entity.Board, first, second Contender) {
	margin := float64(board.Count(entity.SideFirst) - board.Count(entity.SideSecond))

	if finisher, ok := first.Agent.(agent.Finisher); ok {
		finisher.Finish(margin)
	}

	if finisher, ok := second.Agent.(agent.Finisher); ok {
		finisher.Finish(-margin)
	}

	for _, contender := range []Contender{first, second} {
		if learner, ok := contender.Agent.(agent.Learner); ok {
			if trained := learner.Learn(); trained > 0 {
				logger.Debug("agent trained", "agent", contender.Kind, "examples", trained)
			}
		}
	}
}

func (that *MatchRunner) save(ctx context.Context, snapshot engine.Snapshot) error {
	if that.resultRepo == nil {
		return nil
	}

	result := NewMatchResult(snapshot, that.first.Kind, that.second.Kind)
	if err := that.resultRepo.Save(ctx, result); err != nil {
		return fmt.Errorf("failed to save result %s: %w", result.ID, err)
	}

	return nil
}

// NewMatchResult records a finished game between agents of the given kinds.
func NewMatchResult(snapshot engine.Snapshot, firstKind, secondKind string) *entity.MatchResult {
	outcome, _ := snapshot.Outcome()

	return &entity.MatchResult{
		ID:          snapshot.ID,
		FirstAgent:  firstKind,
		SecondAgent: secondKind,
		FirstCount:  snapshot.Board.Count(entity.SideFirst),
		SecondCount: snapshot.Board.Count(entity.SideSecond),
		Outcome:     outcome,
		Moves:       snapshot.Moves,
		FinishedAt:  time.Now().UTC(),
	}
}
