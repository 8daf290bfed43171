package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-replay/internal/render"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

const (
	actionState = "game:state"
	actionMove  = "game:move"
	actionJump  = "game:jump"
	actionOrder = "game:order"
	actionError = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	Cell *int `json:"cell" validate:"required,min=0,max=8"`
}

type JumpPayload struct {
	Step *int `json:"step" validate:"required,min=0"`
}

type OrderPayload struct {
	Ascending *bool `json:"ascending" validate:"required"`
}

type ResponsePayload struct {
	Accepted bool                `json:"accepted"`
	Game     *tictactoe.Snapshot `json:"game,omitempty"`
	View     *render.View        `json:"view,omitempty"`
	Error    string              `json:"error,omitempty"`
}

type Response struct {
	Action  string          `json:"action"`
	Payload ResponsePayload `json:"payload"`
}

func gameResponse(action string, snapshot tictactoe.Snapshot, accepted bool) Response {
	view := render.Game(snapshot)

	return Response{
		Action: action,
		Payload: ResponsePayload{
			Accepted: accepted,
			Game:     &snapshot,
			View:     &view,
		},
	}
}

func errorResponse(action, message string) Response {
	return Response{
		Action:  action,
		Payload: ResponsePayload{Error: message},
	}
}
