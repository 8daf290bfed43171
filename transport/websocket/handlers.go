package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
)

var errInvalidPayload = errors.New("invalid payload")

func (that *Server) handleState(ctx context.Context, sessionID string, msg *Message) (Response, error) {
	snapshot, err := that.game.GetOrCreateGame(ctx, sessionID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to get game: %w", err)
	}

	return gameResponse(msg.Action, snapshot, true), nil
}

func (that *Server) handleMove(ctx context.Context, sessionID string, msg *Message) (Response, error) {
	var payload MovePayload
	if err := that.decode(msg, &payload); err != nil {
		return Response{}, err
	}

	snapshot, accepted, err := that.game.MakeMove(ctx, sessionID, *payload.Cell)
	if err != nil {
		return Response{}, fmt.Errorf("failed to make move: %w", err)
	}

	return gameResponse(msg.Action, snapshot, accepted), nil
}

func (that *Server) handleJump(ctx context.Context, sessionID string, msg *Message) (Response, error) {
	var payload JumpPayload
	if err := that.decode(msg, &payload); err != nil {
		return Response{}, err
	}

	snapshot, err := that.game.JumpTo(ctx, sessionID, *payload.Step)
	if err != nil {
		return Response{}, fmt.Errorf("failed to jump: %w", err)
	}

	return gameResponse(msg.Action, snapshot, true), nil
}

func (that *Server) handleOrder(ctx context.Context, sessionID string, msg *Message) (Response, error) {
	var payload OrderPayload
	if err := that.decode(msg, &payload); err != nil {
		return Response{}, err
	}

	snapshot, err := that.game.SetOrder(ctx, sessionID, *payload.Ascending)
	if err != nil {
		return Response{}, fmt.Errorf("failed to set order: %w", err)
	}

	return gameResponse(msg.Action, snapshot, true), nil
}

// decode unmarshals and validates the message payload into target.
func (that *Server) decode(msg *Message, target any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", errInvalidPayload)
	}

	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	if err := that.validate.Struct(target); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return fmt.Errorf("%w: field %s failed %s", errInvalidPayload, validationErrs[0].Field(), validationErrs[0].Tag())
		}

		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	return nil
}

// failure maps an error to the response sent to the client; internal details are only logged.
func (that *Server) failure(action string, err error) Response {
	switch {
	case errors.Is(err, errInvalidPayload),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidStep):
		return errorResponse(action, err.Error())
	default:
		that.logger.Error("error processing message", "action", action, "error", err)
		return errorResponse(action, "internal error")
	}
}
