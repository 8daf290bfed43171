package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-replay/testing/suite"
)

func playedState(t *testing.T) tictactoe.State {
	t.Helper()

	controller := tictactoe.NewGameController()
	for _, cell := range []int{4, 0, 8} {
		accepted, err := controller.AttemptMove(cell)
		require.NoError(t, err)
		require.True(t, accepted)
	}
	require.NoError(t, controller.JumpTo(2))
	controller.SetAscending(false)

	return controller.State()
}

// repositoryContract runs the same behaviour checks against every GameRepository implementation.
func repositoryContract(t *testing.T, ctx context.Context, gameRepo GameRepository) {
	t.Run("CreateOrUpdate then GetByID returns the same state", func(t *testing.T) {
		// Given: the state of a played game
		state := playedState(t)

		// When: it is stored and read back
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "session-1", state))
		retrieved, err := gameRepo.GetByID(ctx, "session-1")

		// Then: nothing is lost
		require.NoError(t, err)
		assert.Equal(t, state, retrieved)
		assert.Equal(t, entity.PlayerX, retrieved.History[1][4])
	})

	t.Run("CreateOrUpdate overwrites the previous state", func(t *testing.T) {
		// Given: a stored initial state
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "session-2", tictactoe.NewGameController().State()))

		// When: a later state is stored under the same session
		state := playedState(t)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "session-2", state))

		// Then: the latest state is returned
		retrieved, err := gameRepo.GetByID(ctx, "session-2")
		require.NoError(t, err)
		assert.Len(t, retrieved.History, 4)
	})

	t.Run("GetByID returns ErrSessionNotFound for unknown sessions", func(t *testing.T) {
		_, err := gameRepo.GetByID(ctx, "9999999")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID removes the session", func(t *testing.T) {
		// Given: a stored session
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "session-3", playedState(t)))

		// When: deleting it
		err := gameRepo.DeleteByID(ctx, "session-3")

		// Then: it can no longer be found
		require.NoError(t, err)
		_, err = gameRepo.GetByID(ctx, "session-3")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID returns ErrSessionNotFound for unknown sessions", func(t *testing.T) {
		err := gameRepo.DeleteByID(ctx, "9999999")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestRedisGameRepository(t *testing.T) {
	ctx, st := suite.New(t)

	repositoryContract(t, ctx, NewGameRepository(st.Storage, time.Hour))

	t.Run("Applies the session ttl", func(t *testing.T) {
		gameRepo := NewGameRepository(st.Storage, time.Hour)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "ttl", playedState(t)))

		ttl, err := st.Storage.TTL(ctx, gameKey("ttl")).Result()

		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Hour)
	})
}

func TestBadgerGameRepository(t *testing.T) {
	db, err := storage.NewBadger(storage.BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repositoryContract(t, context.Background(), NewBadgerGameRepository(db, time.Hour))
}

func TestNewBadger(t *testing.T) {
	t.Run("Requires a path for persistent databases", func(t *testing.T) {
		_, err := storage.NewBadger(storage.BadgerOptions{})

		require.ErrorIs(t, err, storage.ErrBadgerPathRequired)
	})

	t.Run("Persists sessions on disk across reopen", func(t *testing.T) {
		// Given: a session written to an on-disk database
		dir := t.TempDir()
		db, err := storage.NewBadger(storage.BadgerOptions{Path: dir})
		require.NoError(t, err)

		state := playedState(t)
		require.NoError(t, NewBadgerGameRepository(db, 0).CreateOrUpdate(context.Background(), "disk", state))
		require.NoError(t, db.Close())

		// When: reopening the database
		db, err = storage.NewBadger(storage.BadgerOptions{Path: dir})
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = db.Close()
		})

		// Then: the session is still there
		retrieved, err := NewBadgerGameRepository(db, 0).GetByID(context.Background(), "disk")
		require.NoError(t, err)
		assert.Equal(t, state, retrieved)
	})
}

func TestDecodeState(t *testing.T) {
	t.Run("Decodes a stored state", func(t *testing.T) {
		state, err := decodeState([]byte(`{"history":[["","","","","","","","",""]],"step":0,"ascending":true}`))

		require.NoError(t, err)
		assert.Equal(t, []entity.Grid{{}}, state.History)
		assert.True(t, state.Ascending)
	})

	t.Run("Reports oversized grids as corrupted", func(t *testing.T) {
		// Given: a stored grid with eleven cells
		data := []byte(`{"history":[["","","","","","","","","","X","O"]],"step":0}`)

		// When: decoding it
		_, err := decodeState(data)

		// Then: the state is rejected instead of truncated
		require.ErrorIs(t, err, apperror.ErrCorruptedState)
		require.ErrorIs(t, err, apperror.ErrInvalidGrid)
	})

	t.Run("Reports malformed JSON as corrupted", func(t *testing.T) {
		_, err := decodeState([]byte(`{"history":`))

		require.ErrorIs(t, err, apperror.ErrCorruptedState)
	})
}
