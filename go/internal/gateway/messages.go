package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/mcdev12/flipmatch/go/internal/game"
	"github.com/mcdev12/flipmatch/go/internal/session"
)

// Client message types. These are the only inputs a renderer can send.
const (
	MessageCardSelected   = "cardSelected"
	MessageStartRequested = "startRequested"
	MessageResetRequested = "resetRequested"
)

// Server message types.
const (
	MessageState = "state"
	MessageError = "error"
)

// ClientMessage is a renderer input.
type ClientMessage struct {
	Type   string `json:"type"`
	CardID string `json:"card_id,omitempty"`
}

// ServerMessage carries either a state update or an error.
type ServerMessage struct {
	Type   string         `json:"type"`
	Events []game.Event   `json:"events,omitempty"`
	State  *game.Snapshot `json:"state,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func parseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("malformed message: %w", err)
	}
	switch msg.Type {
	case MessageCardSelected:
		if msg.CardID == "" {
			return ClientMessage{}, fmt.Errorf("%s requires card_id", MessageCardSelected)
		}
	case MessageStartRequested, MessageResetRequested:
	default:
		return ClientMessage{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return msg, nil
}

func stateMessage(update session.Update) ServerMessage {
	state := update.State
	return ServerMessage{Type: MessageState, Events: update.Events, State: &state}
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{Type: MessageError, Error: err.Error()}
}
