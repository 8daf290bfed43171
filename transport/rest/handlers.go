package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay/internal/render"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

const htmxRequestHeader = "HX-Request"

var errInvalidOrder = errors.New("invalid order payload")

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (tictactoe.Snapshot, error)

	MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.Snapshot, bool, error)
	JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.Snapshot, error)
	SetOrder(ctx context.Context, sessionID string, ascending bool) (tictactoe.Snapshot, error)
}

// GameResponse is the JSON body of every /api/game route.
type GameResponse struct {
	Accepted bool               `json:"accepted"`
	Game     tictactoe.Snapshot `json:"game"`
	View     render.View        `json:"view"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type orderRequest struct {
	Ascending *bool `json:"ascending"`
}

type handlers struct {
	logger *slog.Logger
	game   gameUseCase
}

func newHandlers(logger *slog.Logger, game gameUseCase) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

func (that *handlers) page(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.GetOrCreateGame(r.Context(), sessionID(w, r))
	if err != nil {
		that.htmlError(w, "page", err)
		return
	}

	that.renderHTML(w, r, pageView(render.Game(snapshot)))
}

func (that *handlers) cell(w http.ResponseWriter, r *http.Request) {
	cell, err := pathInt(r, "index")
	if err != nil {
		that.htmlError(w, "cell", apperror.ErrInvalidCell)
		return
	}

	snapshot, _, err := that.game.MakeMove(r.Context(), sessionID(w, r), cell)
	if err != nil {
		that.htmlError(w, "cell", err)
		return
	}

	that.fragmentOrRedirect(w, r, snapshot)
}

func (that *handlers) step(w http.ResponseWriter, r *http.Request) {
	step, err := pathInt(r, "step")
	if err != nil {
		that.htmlError(w, "step", apperror.ErrInvalidStep)
		return
	}

	snapshot, err := that.game.JumpTo(r.Context(), sessionID(w, r), step)
	if err != nil {
		that.htmlError(w, "step", err)
		return
	}

	that.fragmentOrRedirect(w, r, snapshot)
}

func (that *handlers) order(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// an unchecked checkbox is not submitted at all
	ascending := r.PostFormValue("ascending") == "true"

	snapshot, err := that.game.SetOrder(r.Context(), sessionID(w, r), ascending)
	if err != nil {
		that.htmlError(w, "order", err)
		return
	}

	that.fragmentOrRedirect(w, r, snapshot)
}

func (that *handlers) apiGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.GetOrCreateGame(r.Context(), sessionID(w, r))
	if err != nil {
		that.jsonError(w, "apiGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse(snapshot, true))
}

func (that *handlers) apiCell(w http.ResponseWriter, r *http.Request) {
	cell, err := pathInt(r, "index")
	if err != nil {
		that.jsonError(w, "apiCell", apperror.ErrInvalidCell)
		return
	}

	snapshot, accepted, err := that.game.MakeMove(r.Context(), sessionID(w, r), cell)
	if err != nil {
		that.jsonError(w, "apiCell", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse(snapshot, accepted))
}

func (that *handlers) apiStep(w http.ResponseWriter, r *http.Request) {
	step, err := pathInt(r, "step")
	if err != nil {
		that.jsonError(w, "apiStep", apperror.ErrInvalidStep)
		return
	}

	snapshot, err := that.game.JumpTo(r.Context(), sessionID(w, r), step)
	if err != nil {
		that.jsonError(w, "apiStep", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse(snapshot, true))
}

func (that *handlers) apiOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ascending == nil {
		that.jsonError(w, "apiOrder", errInvalidOrder)
		return
	}

	snapshot, err := that.game.SetOrder(r.Context(), sessionID(w, r), *req.Ascending)
	if err != nil {
		that.jsonError(w, "apiOrder", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse(snapshot, true))
}

func gameResponse(snapshot tictactoe.Snapshot, accepted bool) GameResponse {
	return GameResponse{
		Accepted: accepted,
		Game:     snapshot,
		View:     render.Game(snapshot),
	}
}

// fragmentOrRedirect answers htmx with the swapped fragment and plain form posts with a redirect.
func (that *handlers) fragmentOrRedirect(w http.ResponseWriter, r *http.Request, snapshot tictactoe.Snapshot) {
	if strings.EqualFold(r.Header.Get(htmxRequestHeader), "true") {
		that.renderHTML(w, r, gameView(render.Game(snapshot)))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *handlers) renderHTML(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		that.logger.Error("failed to render html", "error", err)
	}
}

func (that *handlers) htmlError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		http.Error(w, "Internal Server Error", status)
		return
	}

	http.Error(w, err.Error(), status)
}

func (that *handlers) jsonError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		message = "Internal Server Error"
	}

	that.writeJSON(w, status, ErrorResponse{Error: message})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidStep),
		errors.Is(err, errInvalidOrder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, err
	}

	return value, nil
}
