package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

type fakeGame struct {
	mu       sync.Mutex
	snapshot engine.Snapshot
	restarts int
}

func (that *fakeGame) Snapshot() engine.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot
}

func (that *fakeGame) Choose(cell entity.Cell) error {
	if !cell.InBounds() {
		return apperror.ErrInvalidCell
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.snapshot.Board.First = that.snapshot.Board.First.With(cell)
	that.snapshot.Version++
	return nil
}

func (that *fakeGame) Restart(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.restarts++
	that.snapshot.Version++
	return nil
}

func dial(t *testing.T, game *fakeGame) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(New(slog.New(slog.NewTextHandler(io.Discard, nil)), game, 5*time.Millisecond))
	t.Cleanup(server.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
		_ = conn.Close()
	})

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	var payload Payload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return msg.Action, payload
}

func TestServer_PushesSnapshots(t *testing.T) {
	// Given: a connected client
	game := &fakeGame{snapshot: engine.Snapshot{ID: "abc", Board: entity.NewBoard(), Version: 1}}
	conn := dial(t, game)

	// Then: the current snapshot arrives first
	action, payload := readMessage(t, conn)
	require.Equal(t, actionGameState, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, uint64(1), payload.Game.Version)

	// When: the client plays a cell
	require.NoError(t, conn.WriteJSON(Message{
		Action:  actionGameTurn,
		Payload: json.RawMessage(`{"cell":{"row":2,"col":4}}`),
	}))

	// Then: the newer snapshot is pushed
	action, payload = readMessage(t, conn)
	require.Equal(t, actionGameState, action)
	assert.Equal(t, uint64(2), payload.Game.Version)
	assert.True(t, payload.Game.Board.First.Has(entity.Cell{Row: 2, Col: 4}))
}

func TestServer_Restart(t *testing.T) {
	game := &fakeGame{snapshot: engine.Snapshot{Version: 1}}
	conn := dial(t, game)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(Message{Action: actionGameRestart}))

	action, payload := readMessage(t, conn)
	require.Equal(t, actionGameState, action)
	assert.Equal(t, uint64(2), payload.Game.Version)
	game.mu.Lock()
	assert.Equal(t, 1, game.restarts)
	game.mu.Unlock()
}

func TestServer_ReportsErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "unknown action",
			msg:  Message{Action: "game:leave"},
			want: `unknown action "game:leave"`,
		},
		{
			name: "missing cell",
			msg:  Message{Action: actionGameTurn, Payload: json.RawMessage(`{}`)},
			want: errCellRequired.Error(),
		},
		{
			name: "cell off the board",
			msg:  Message{Action: actionGameTurn, Payload: json.RawMessage(`{"cell":{"row":8,"col":8}}`)},
			want: apperror.ErrInvalidCell.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a connected client that received the initial snapshot
			conn := dial(t, &fakeGame{snapshot: engine.Snapshot{Version: 1}})
			readMessage(t, conn)

			// When: a bad message is sent
			require.NoError(t, conn.WriteJSON(tt.msg))

			// Then: an error message comes back
			action, payload := readMessage(t, conn)
			assert.Equal(t, actionError, action)
			assert.Equal(t, tt.want, payload.Error)
		})
	}
}
