package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

type gameController interface {
	Snapshot() engine.Snapshot
	Choose(cell entity.Cell) error
	Restart(ctx context.Context) error
}

type errorResponse struct {
	Error string `json:"error"`
}

type gameHandlers struct {
	logger *slog.Logger
	game   gameController
}

func newGameHandlers(logger *slog.Logger, game gameController) *gameHandlers {
	return &gameHandlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

func (that *gameHandlers) getGame(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.game.Snapshot())
}

func (that *gameHandlers) chooseCell(w http.ResponseWriter, r *http.Request) {
	var cell entity.Cell

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cell); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	if err := that.game.Choose(cell); err != nil {
		switch {
		case errors.Is(err, apperror.ErrInvalidCell):
			that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, apperror.ErrGameNotRunning):
			that.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			that.logger.Error("failed to choose cell", "cell", cell, "error", err)
			that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		}
		return
	}

	that.writeJSON(w, http.StatusAccepted, that.game.Snapshot())
}

func (that *gameHandlers) restart(w http.ResponseWriter, r *http.Request) {
	// the game outlives the request
	if err := that.game.Restart(context.WithoutCancel(r.Context())); err != nil {
		that.logger.Error("failed to restart game", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	that.writeJSON(w, http.StatusOK, that.game.Snapshot())
}

func (that *gameHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
