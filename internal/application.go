package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-replay/internal/config"
	"github.com/rocketscienceinc/tictactoe-replay/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-replay/internal/repository"
	"github.com/rocketscienceinc/tictactoe-replay/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-replay/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-replay/transport/rest"
	"github.com/rocketscienceinc/tictactoe-replay/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownStorage = errors.New("unknown storage backend")
)

// RunApp - runs the HTTP and WebSocket server until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gameRepo, closer, err := newGameRepository(ctx, logger, conf)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closer.Close(); cerr != nil {
			log.Error("could not close storage", "storage", conf.Storage, "error", cerr)
		}
	}()

	gameUseCase := usecase.NewGameUseCase(logger, gameRepo, metrics.NewRecorder())
	wsServer := websocket.New(logger, gameUseCase)
	router := rest.NewRouter(logger, gameUseCase, wsServer, metrics.Handler())

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)
	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newGameRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.GameRepository, io.Closer, error) {
	switch conf.Storage {
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewGameRepository(redisStorage, conf.SessionTTL), redisStorage, nil

	case config.StorageBadger:
		badgerStorage, err := storage.NewBadger(storage.BadgerOptions{
			Path:     conf.Badger.Path,
			InMemory: conf.Badger.InMemory,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not open badger storage: %w", err)
		}

		return repository.NewBadgerGameRepository(badgerStorage, conf.SessionTTL), badgerStorage, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorage, conf.Storage)
	}
}
