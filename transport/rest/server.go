package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// NewRouter wires the HTML, JSON, websocket and metrics routes. ws and metrics may be nil.
func NewRouter(logger *slog.Logger, game gameUseCase, ws, metrics http.Handler) *mux.Router {
	h := newHandlers(logger, game)

	router := mux.NewRouter()
	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	router.HandleFunc("/", h.page).Methods(http.MethodGet)
	router.HandleFunc("/game/cells/{index}", h.cell).Methods(http.MethodPost)
	router.HandleFunc("/game/steps/{step}", h.step).Methods(http.MethodPost)
	router.HandleFunc("/game/order", h.order).Methods(http.MethodPost)

	api := router.PathPrefix("/api/game").Subrouter()
	api.HandleFunc("", h.apiGame).Methods(http.MethodGet)
	api.HandleFunc("/cells/{index}", h.apiCell).Methods(http.MethodPost)
	api.HandleFunc("/steps/{step}", h.apiStep).Methods(http.MethodPost)
	api.HandleFunc("/order", h.apiOrder).Methods(http.MethodPut)

	if ws != nil {
		router.Handle("/ws", ws).Methods(http.MethodGet)
	}

	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	return router
}

// Start - serves handler on port until ctx is canceled, then shuts down gracefully.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
