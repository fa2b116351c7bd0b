package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

const defaultRefreshInterval = 50 * time.Millisecond

type gameController interface {
	Snapshot() engine.Snapshot
	Choose(cell entity.Cell) error
	Restart(ctx context.Context) error
}

// Terminal forwards typed commands to a game and redraws it whenever it changes.
type Terminal struct {
	logger   *slog.Logger
	game     gameController
	in       io.Reader
	renderer *Renderer
	refresh  time.Duration
}

func New(logger *slog.Logger, game gameController, in io.Reader, renderer *Renderer, refresh time.Duration) *Terminal {
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}

	return &Terminal{
		logger:   logger.With("component", "terminal"),
		game:     game,
		in:       in,
		renderer: renderer,
		refresh:  refresh,
	}
}

// Run returns on "quit", at the end of input or when ctx is cancelled.
func (that *Terminal) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(that.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			that.logger.Error("failed to read input", "error", err)
		}
	}()

	ticker := time.NewTicker(that.refresh)
	defer ticker.Stop()

	var lastVersion uint64
	for {
		if snapshot := that.game.Snapshot(); snapshot.Version != lastVersion {
			if err := that.renderer.Render(snapshot); err != nil {
				return err
			}
			lastVersion = snapshot.Version
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			quit, err := that.handle(ctx, line)
			if err != nil {
				if msgErr := that.renderer.Message(err.Error()); msgErr != nil {
					return msgErr
				}
			}
			if quit {
				return nil
			}
		}
	}
}

func (that *Terminal) handle(ctx context.Context, line string) (bool, error) {
	command, err := ParseCommand(line)
	if err != nil {
		return false, err
	}

	switch command.Kind {
	case CommandQuit:
		return true, nil
	case CommandRestart:
		return false, that.restart(ctx)
	case CommandCell:
		// any cell on a finished board starts a new game
		if that.game.Snapshot().Status.IsFinished() {
			return false, that.restart(ctx)
		}

		if err = that.game.Choose(command.Cell); err != nil {
			if errors.Is(err, apperror.ErrGameNotRunning) {
				return false, fmt.Errorf("%w, type restart to play again", err)
			}
			return false, err
		}
	}

	return false, nil
}

func (that *Terminal) restart(ctx context.Context) error {
	if err := that.game.Restart(ctx); err != nil {
		return fmt.Errorf("failed to restart game: %w", err)
	}

	that.logger.Debug("game restarted")

	return nil
}
