package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

type fakeGame struct {
	mu        sync.Mutex
	snapshot  engine.Snapshot
	chosen    []entity.Cell
	chooseErr error
	restarts  int
}

func (that *fakeGame) Snapshot() engine.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot
}

func (that *fakeGame) Choose(cell entity.Cell) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.chooseErr != nil {
		return that.chooseErr
	}
	that.chosen = append(that.chosen, cell)
	return nil
}

func (that *fakeGame) Restart(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.restarts++
	that.snapshot.Moves = 0
	return nil
}

func newTestRouter(game *fakeGame) http.Handler {
	return NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), game, nil)
}

func TestPing(t *testing.T) {
	router := newTestRouter(&fakeGame{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestGetGame(t *testing.T) {
	// Given: a running game with a known snapshot
	game := &fakeGame{snapshot: engine.Snapshot{
		ID:      "abc",
		Board:   entity.NewBoard(),
		Status:  entity.AwaitingStatus(entity.SideFirst),
		Running: true,
		Version: 3,
	}}
	router := newTestRouter(game)

	// When: the game is requested
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/game/", nil))

	// Then: the snapshot is returned as JSON
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got engine.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, game.snapshot, got)
}

func TestChooseCell(t *testing.T) {
	t.Run("Accepts a cell", func(t *testing.T) {
		// Given: a running game
		game := &fakeGame{}
		router := newTestRouter(game)

		// When: a cell is posted
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/game/cell", strings.NewReader(`{"row":2,"col":4}`)))

		// Then: it is forwarded to the game
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, []entity.Cell{{Row: 2, Col: 4}}, game.chosen)
	})

	t.Run("Rejects malformed JSON", func(t *testing.T) {
		game := &fakeGame{}
		router := newTestRouter(game)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/game/cell", strings.NewReader(`{"cell":9}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, game.chosen)
	})

	t.Run("Maps game errors to status codes", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{err: apperror.ErrInvalidCell, want: http.StatusBadRequest},
			{err: apperror.ErrGameNotRunning, want: http.StatusConflict},
			{err: io.ErrUnexpectedEOF, want: http.StatusInternalServerError},
		}

		for _, tt := range tests {
			router := newTestRouter(&fakeGame{chooseErr: tt.err})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/game/cell", strings.NewReader(`{"row":9,"col":0}`)))

			assert.Equal(t, tt.want, rec.Code, tt.err.Error())
		}
	})
}

func TestRestart(t *testing.T) {
	// Given: a game in progress
	game := &fakeGame{snapshot: engine.Snapshot{Moves: 12}}
	router := newTestRouter(game)

	// When: a restart is requested
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/game/restart", nil))

	// Then: the game is restarted and the fresh snapshot returned
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, game.restarts)

	var got engine.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 0, got.Moves)
}
