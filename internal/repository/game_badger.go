package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

type badgerGame struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerGameRepository - embedded sessions for single node deployments and local runs.
func NewBadgerGameRepository(db *badger.DB, ttl time.Duration) GameRepository {
	return &badgerGame{
		db:  db,
		ttl: ttl,
	}
}

func (that *badgerGame) CreateOrUpdate(_ context.Context, sessionID string, state tictactoe.State) error {
	gameJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	err = that.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(gameKey(sessionID)), gameJSON)
		if that.ttl > 0 {
			entry = entry.WithTTL(that.ttl)
		}

		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *badgerGame) GetByID(_ context.Context, sessionID string) (tictactoe.State, error) {
	var data []byte

	err := that.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gameKey(sessionID)))
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)

		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return tictactoe.State{}, apperror.ErrSessionNotFound
	}

	if err != nil {
		return tictactoe.State{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	return decodeState(data)
}

func (that *badgerGame) DeleteByID(_ context.Context, sessionID string) error {
	key := []byte(gameKey(sessionID))

	err := that.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}

		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperror.ErrSessionNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	return nil
}
