package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

const (
	actionGameState   = "game:state"
	actionGameTurn    = "game:turn"
	actionGameRestart = "game:restart"
	actionError       = "error"
)

// Message is the envelope for every frame exchanged with a client.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Game  *engine.Snapshot `json:"game,omitempty"`
	Cell  *entity.Cell     `json:"cell,omitempty"`
	Error string           `json:"error,omitempty"`
}

func newMessage(action string, payload Payload) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: action, Payload: raw}, nil
}
