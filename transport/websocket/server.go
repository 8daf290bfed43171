package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

const (
	sessionQueryParam = "session"

	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 4096
)

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (tictactoe.Snapshot, error)

	MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.Snapshot, bool, error)
	JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.Snapshot, error)
	SetOrder(ctx context.Context, sessionID string, ascending bool) (tictactoe.Snapshot, error)
}

type handlerFunc func(ctx context.Context, sessionID string, msg *Message) (Response, error)

type Server struct {
	logger   *slog.Logger
	game     gameUseCase
	validate *validator.Validate
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gameUseCase) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		game:     game,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionState] = server.handleState
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionJump] = server.handleJump
	server.handlers[actionOrder] = server.handleOrder

	return server
}

// ServeHTTP upgrades the request and serves the session named by the "session" query parameter.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	sessionID := r.URL.Query().Get(sessionQueryParam)
	if _, err := uuid.Parse(sessionID); err != nil {
		http.Error(w, "session query parameter must be a uuid", http.StatusBadRequest)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log = log.With("sessionID", sessionID)
	log.Info("WebSocket connection established")

	if err = that.handleMessages(r.Context(), conn, sessionID); err != nil {
		log.Error("error handling messages", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until the connection closes.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	log := that.logger.With("method", "handleMessages", "sessionID", sessionID)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go that.keepAlive(conn, done)

	for {
		_, reqBody, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.write(conn, errorResponse(actionError, "invalid message")); err != nil {
				return err
			}
			continue
		}

		if err = that.write(conn, that.dispatch(ctx, sessionID, &message)); err != nil {
			return err
		}
	}
}

func (that *Server) dispatch(ctx context.Context, sessionID string, message *Message) Response {
	log := that.logger.With("method", "dispatch", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action")
		return errorResponse(message.Action, "unknown action")
	}

	response, err := handler(ctx, sessionID, message)
	if err != nil {
		return that.failure(message.Action, err)
	}

	return response
}

func (that *Server) write(conn *websocket.Conn, response Response) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

	return conn.WriteJSON(response)
}

func (that *Server) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
