package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-replay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay/internal/render"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

// GameUseCase runs controller operations against the stored game of a session.
type GameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (tictactoe.Snapshot, error)

	MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.Snapshot, bool, error)
	JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.Snapshot, error)
	SetOrder(ctx context.Context, sessionID string, ascending bool) (tictactoe.Snapshot, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, sessionID string, state tictactoe.State) error
	GetByID(ctx context.Context, sessionID string) (tictactoe.State, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type metricsRecorder interface {
	MoveAttempted(accepted bool)
	GameWon(mark entity.Mark)
	Jumped()
	OrderChanged(ascending bool)
	SessionCreated()
}

type gameUseCase struct {
	logger *slog.Logger

	gameRepo gameRepo
	metrics  metricsRecorder

	locks *sessionLocks
}

func NewGameUseCase(logger *slog.Logger, gameRepo gameRepo, metrics metricsRecorder) GameUseCase {
	return &gameUseCase{
		logger:   logger.With("component", "game_usecase"),
		gameRepo: gameRepo,
		metrics:  metrics,
		locks:    newSessionLocks(),
	}
}

func (that *gameUseCase) GetOrCreateGame(ctx context.Context, sessionID string) (tictactoe.Snapshot, error) {
	unlock := that.locks.lock(sessionID)
	defer unlock()

	controller, err := that.loadOrCreate(ctx, sessionID)
	if err != nil {
		return tictactoe.Snapshot{}, err
	}

	return controller.Snapshot(), nil
}

func (that *gameUseCase) MakeMove(ctx context.Context, sessionID string, cell int) (tictactoe.Snapshot, bool, error) {
	log := that.logger.With("method", "MakeMove", "sessionID", sessionID, "cell", cell)

	unlock := that.locks.lock(sessionID)
	defer unlock()

	controller, err := that.loadOrCreate(ctx, sessionID)
	if err != nil {
		return tictactoe.Snapshot{}, false, err
	}

	accepted, err := controller.AttemptMove(cell)
	if err != nil {
		return controller.Snapshot(), false, fmt.Errorf("failed to make move: %w", err)
	}

	that.metrics.MoveAttempted(accepted)

	if !accepted {
		log.Debug("move rejected", "step", controller.Step())
		return controller.Snapshot(), false, nil
	}

	if err = that.save(ctx, sessionID, controller); err != nil {
		return tictactoe.Snapshot{}, false, err
	}

	snapshot := controller.Snapshot()
	if snapshot.HasWinner {
		that.metrics.GameWon(snapshot.Winner.Mark)
		log.Info("game won", "winner", snapshot.Winner.Mark, "step", snapshot.Step, "board", render.Text(snapshot.Grid))
	}

	return snapshot, true, nil
}

func (that *gameUseCase) JumpTo(ctx context.Context, sessionID string, step int) (tictactoe.Snapshot, error) {
	unlock := that.locks.lock(sessionID)
	defer unlock()

	controller, err := that.loadOrCreate(ctx, sessionID)
	if err != nil {
		return tictactoe.Snapshot{}, err
	}

	if err = controller.JumpTo(step); err != nil {
		return controller.Snapshot(), fmt.Errorf("failed to jump: %w", err)
	}

	that.metrics.Jumped()

	if err = that.save(ctx, sessionID, controller); err != nil {
		return tictactoe.Snapshot{}, err
	}

	return controller.Snapshot(), nil
}

func (that *gameUseCase) SetOrder(ctx context.Context, sessionID string, ascending bool) (tictactoe.Snapshot, error) {
	unlock := that.locks.lock(sessionID)
	defer unlock()

	controller, err := that.loadOrCreate(ctx, sessionID)
	if err != nil {
		return tictactoe.Snapshot{}, err
	}

	controller.SetAscending(ascending)
	that.metrics.OrderChanged(ascending)

	if err = that.save(ctx, sessionID, controller); err != nil {
		return tictactoe.Snapshot{}, err
	}

	return controller.Snapshot(), nil
}

// loadOrCreate restores the session game, starting a new one when the session is unknown.
// A stored state that fails validation is replaced by a new game.
func (that *gameUseCase) loadOrCreate(ctx context.Context, sessionID string) (*tictactoe.GameController, error) {
	log := that.logger.With("method", "loadOrCreate", "sessionID", sessionID)

	state, err := that.gameRepo.GetByID(ctx, sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return that.create(ctx, sessionID)
	}

	if err == nil {
		var controller *tictactoe.GameController
		if controller, err = tictactoe.FromState(state); err == nil {
			return controller, nil
		}
	}

	if !errors.Is(err, apperror.ErrCorruptedState) {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	log.Warn("stored game is corrupted, starting a new one", "error", err)

	if err = that.gameRepo.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to delete corrupted game: %w", err)
	}

	return that.create(ctx, sessionID)
}

func (that *gameUseCase) create(ctx context.Context, sessionID string) (*tictactoe.GameController, error) {
	controller := tictactoe.NewGameController()
	if err := that.save(ctx, sessionID, controller); err != nil {
		return nil, err
	}

	that.metrics.SessionCreated()
	that.logger.Info("new game session", "sessionID", sessionID)

	return controller, nil
}

func (that *gameUseCase) save(ctx context.Context, sessionID string, controller *tictactoe.GameController) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, sessionID, controller.State()); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// sessionLocks serialises the load-apply-save sequence per session.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[string]*sessionLock),
	}
}

func (that *sessionLocks) lock(sessionID string) func() {
	that.mu.Lock()
	entry, ok := that.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		that.locks[sessionID] = entry
	}
	entry.refs++
	that.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		that.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, sessionID)
		}
		that.mu.Unlock()
	}
}
