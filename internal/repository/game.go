package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

const gameKeyPrefix = "game:"

// GameRepository stores the game state of each browser session.
type GameRepository interface {
	CreateOrUpdate(ctx context.Context, sessionID string, state tictactoe.State) error
	GetByID(ctx context.Context, sessionID string) (tictactoe.State, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - redis backed sessions; a zero ttl keeps them forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, sessionID string, state tictactoe.State) error {
	gameJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(sessionID), gameJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, sessionID string) (tictactoe.State, error) {
	response, err := that.client.Get(ctx, gameKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return tictactoe.State{}, apperror.ErrSessionNotFound
	}

	if err != nil {
		return tictactoe.State{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	return decodeState([]byte(response))
}

func (that *dbGame) DeleteByID(ctx context.Context, sessionID string) error {
	deleted, err := that.client.Del(ctx, gameKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func gameKey(sessionID string) string {
	return gameKeyPrefix + sessionID
}

func decodeState(data []byte) (tictactoe.State, error) {
	var state tictactoe.State
	if err := json.Unmarshal(data, &state); err != nil {
		return tictactoe.State{}, fmt.Errorf("%w: failed to unmarshal game: %w", apperror.ErrCorruptedState, err)
	}

	return state, nil
}
