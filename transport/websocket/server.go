package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

const (
	defaultPollInterval = 50 * time.Millisecond
	writeWait           = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = pongWait * 9 / 10
	maxMessageSize      = 4096
)

var errCellRequired = errors.New("cell is required")

type gameController interface {
	Snapshot() engine.Snapshot
	Choose(cell entity.Cell) error
	Restart(ctx context.Context) error
}

type handler func(ctx context.Context, msg *Message) error

// Server streams game snapshots to websocket clients and accepts their moves.
type Server struct {
	logger       *slog.Logger
	game         gameController
	pollInterval time.Duration
	upgrader     websocket.Upgrader

	handlers map[string]handler
}

func New(logger *slog.Logger, game gameController, pollInterval time.Duration) *Server {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	server := &Server{
		logger:       logger.With("component", "websocket"),
		game:         game,
		pollInterval: pollInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		handlers: make(map[string]handler),
	}

	server.handlers[actionGameTurn] = server.handleTurn
	server.handlers[actionGameRestart] = server.handleRestart

	return server
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := &client{conn: conn}
	defer func() {
		if err = conn.Close(); err != nil {
			that.logger.Debug("failed to close connection", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	go func() {
		defer cancel()
		that.readMessages(ctx, client)
	}()

	if err = that.pushSnapshots(ctx, client); err != nil {
		that.logger.Debug("client disconnected", "error", err)
	}
}

// pushSnapshots sends the current snapshot and then every newer one until ctx is done.
func (that *Server) pushSnapshots(ctx context.Context, client *client) error {
	ticker := time.NewTicker(that.pollInterval)
	defer ticker.Stop()

	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	var lastVersion uint64
	for {
		if snapshot := that.game.Snapshot(); snapshot.Version != lastVersion {
			if err := client.send(actionGameState, Payload{Game: &snapshot}); err != nil {
				return err
			}
			lastVersion = snapshot.Version
		}

		select {
		case <-ctx.Done():
			return nil
		case <-pinger.C:
			if err := client.ping(); err != nil {
				return err
			}
		case <-ticker.C:
		}
	}
}

func (that *Server) readMessages(ctx context.Context, client *client) {
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Debug("failed to read message", "error", err)
			}
			return
		}

		if err := that.handleMessage(ctx, &msg); err != nil {
			if sendErr := client.send(actionError, Payload{Error: err.Error()}); sendErr != nil {
				return
			}
		}
	}
}

func (that *Server) handleMessage(ctx context.Context, msg *Message) error {
	handle, ok := that.handlers[msg.Action]
	if !ok {
		return fmt.Errorf("unknown action %q", msg.Action)
	}

	return handle(ctx, msg)
}

func (that *Server) handleTurn(_ context.Context, msg *Message) error {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Cell == nil {
		return errCellRequired
	}

	return that.game.Choose(*payload.Cell)
}

func (that *Server) handleRestart(ctx context.Context, _ *Message) error {
	// the game outlives the connection
	return that.game.Restart(context.WithoutCancel(ctx))
}

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (that *client) send(action string, payload Payload) error {
	msg, err := newMessage(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err = that.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) ping() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}
