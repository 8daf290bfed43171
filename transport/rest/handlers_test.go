package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

const testSession = "0b9f6c1e-7c1a-4c55-9a55-3b0f9d1f1a11"

type mockGameUseCase struct {
	mock.Mock
}

func (that *mockGameUseCase) GetOrCreateGame(ctx context.Context, sessionID string) (tictactoe.Snapshot, error) {
	args := that.Called(ctx, sessionID)
	return args.Get(0).(tictactoe.Snapshot), args.Error(1)
}

func (that *mockGameUseCase) MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.Snapshot, bool, error) {
	args := that.Called(ctx, sessionID, cell)
	return args.Get(0).(tictactoe.Snapshot), args.Bool(1), args.Error(2)
}

func (that *mockGameUseCase) JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.Snapshot, error) {
	args := that.Called(ctx, sessionID, step)
	return args.Get(0).(tictactoe.Snapshot), args.Error(1)
}

func (that *mockGameUseCase) SetOrder(ctx context.Context, sessionID string, ascending bool) (tictactoe.Snapshot, error) {
	args := that.Called(ctx, sessionID, ascending)
	return args.Get(0).(tictactoe.Snapshot), args.Error(1)
}

func newTestRouter(t *testing.T) (http.Handler, *mockGameUseCase) {
	t.Helper()

	game := &mockGameUseCase{}
	t.Cleanup(func() {
		game.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(logger, game, nil, nil), game
}

func snapshotAfter(t *testing.T, cells ...int) tictactoe.Snapshot {
	t.Helper()

	controller := tictactoe.NewGameController()
	for _, cell := range cells {
		_, err := controller.AttemptMove(cell)
		require.NoError(t, err)
	}

	return controller.Snapshot()
}

func newRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: testSession})

	return req
}

func TestPing(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestPage(t *testing.T) {
	t.Run("Issues a session cookie and renders the board", func(t *testing.T) {
		// Given: a request without a session cookie
		router, game := newTestRouter(t)
		game.On("GetOrCreateGame", mock.Anything, mock.AnythingOfType("string")).
			Return(snapshotAfter(t, 0, 3, 1, 4, 2), nil).Once()

		// When: loading the page
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		// Then: a session cookie is set and the won board is rendered
		require.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		_, err := uuid.Parse(cookies[0].Value)
		require.NoError(t, err)

		body := rec.Body.String()
		assert.Contains(t, body, "<h1>Play Tic Tac Toe</h1>")
		assert.Contains(t, body, `<div class="next winner">Winner: X</div>`)
		assert.Equal(t, 3, strings.Count(body, `class="square winner"`))
		assert.Contains(t, body, "Game start")
		assert.Contains(t, body, `class="move current">Move #5</button>`)
	})

	t.Run("Reuses a valid session cookie", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("GetOrCreateGame", mock.Anything, testSession).Return(snapshotAfter(t), nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
		assert.Contains(t, rec.Body.String(), "Next player: X")
	})

	t.Run("Returns 500 on storage errors", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("GetOrCreateGame", mock.Anything, testSession).
			Return(tictactoe.Snapshot{}, errors.New("redis down")).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "redis down")
	})
}

func TestCellForm(t *testing.T) {
	t.Run("htmx requests get the game fragment", func(t *testing.T) {
		// Given: an htmx request for cell 4
		router, game := newTestRouter(t)
		game.On("MakeMove", mock.Anything, testSession, 4).Return(snapshotAfter(t, 4), true, nil).Once()

		req := newRequest(http.MethodPost, "/game/cells/4", nil)
		req.Header.Set("HX-Request", "true")

		// When: posting the move
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		// Then: only the fragment is returned
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, `<div id="game" class="game">`))
		assert.NotContains(t, body, "<html")
		assert.Contains(t, body, `data-cell="4">X</button>`)
		assert.Contains(t, body, "Next player: O")
	})

	t.Run("Plain form posts are redirected", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("MakeMove", mock.Anything, testSession, 0).Return(snapshotAfter(t, 0), true, nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodPost, "/game/cells/0", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("Out of range cells are a bad request", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("MakeMove", mock.Anything, testSession, 12).
			Return(tictactoe.Snapshot{}, false, apperror.ErrInvalidCell).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodPost, "/game/cells/12", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Non numeric cells are a bad request", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodPost, "/game/cells/abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStepForm(t *testing.T) {
	// Given: a game jumped back to step 1
	router, game := newTestRouter(t)
	snapshot := snapshotAfter(t, 0, 4)
	snapshot.Step = 1
	game.On("JumpTo", mock.Anything, testSession, 1).Return(snapshot, nil).Once()

	req := newRequest(http.MethodPost, "/game/steps/1", nil)
	req.Header.Set("HX-Request", "true")

	// When: posting the jump
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Then: the selected move is highlighted
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="move current">Move #1</button>`)
}

func TestOrderForm(t *testing.T) {
	t.Run("Checked box keeps ascending order", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("SetOrder", mock.Anything, testSession, true).Return(snapshotAfter(t), nil).Once()

		req := newRequest(http.MethodPost, "/game/order", strings.NewReader(url.Values{"ascending": {"true"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("Unchecked box switches to descending order", func(t *testing.T) {
		// Given: a descending snapshot
		router, game := newTestRouter(t)
		snapshot := snapshotAfter(t, 0, 4)
		snapshot.Ascending = false
		game.On("SetOrder", mock.Anything, testSession, false).Return(snapshot, nil).Once()

		req := newRequest(http.MethodPost, "/game/order", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")

		// When: posting the form without the checkbox
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		// Then: the list is reversed, newest first
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<ol reversed start="2">`)
		assert.Less(t, strings.Index(body, "Move #2"), strings.Index(body, "Game start"))
		assert.NotContains(t, body, "checked")
	})
}

func TestAPI(t *testing.T) {
	t.Run("GET returns the snapshot and view", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("GetOrCreateGame", mock.Anything, testSession).Return(snapshotAfter(t, 8), nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodGet, "/api/game", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp GameResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Accepted)
		assert.Equal(t, entity.PlayerX, resp.Game.Grid[8])
		assert.Equal(t, "X", resp.View.Rows[2][2].Value)
		assert.Equal(t, "Next player: O", resp.View.Status.Text)
	})

	t.Run("Rejected moves report accepted false", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("MakeMove", mock.Anything, testSession, 0).Return(snapshotAfter(t, 0), false, nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodPost, "/api/game/cells/0", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp GameResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Accepted)
	})

	t.Run("Invalid steps return a JSON error", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("JumpTo", mock.Anything, testSession, 7).
			Return(tictactoe.Snapshot{}, apperror.ErrInvalidStep).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodPost, "/api/game/steps/7", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, apperror.ErrInvalidStep.Error(), resp.Error)
	})

	t.Run("PUT order requires the ascending field", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodPut, "/api/game/order", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("PUT order applies the flag", func(t *testing.T) {
		router, game := newTestRouter(t)
		game.On("SetOrder", mock.Anything, testSession, false).Return(snapshotAfter(t), nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newRequest(http.MethodPut, "/api/game/order", strings.NewReader(`{"ascending":false}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
