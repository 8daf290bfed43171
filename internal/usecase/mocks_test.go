package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-replay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay/internal/tictactoe"
)

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, sessionID string, state tictactoe.State) error {
	args := that.Called(ctx, sessionID, state)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, sessionID string) (tictactoe.State, error) {
	args := that.Called(ctx, sessionID)
	return args.Get(0).(tictactoe.State), args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, sessionID string) error {
	args := that.Called(ctx, sessionID)
	return args.Error(0)
}

type mockMetrics struct {
	mock.Mock
}

func (that *mockMetrics) MoveAttempted(accepted bool) {
	that.Called(accepted)
}

func (that *mockMetrics) GameWon(mark entity.Mark) {
	that.Called(mark)
}

func (that *mockMetrics) Jumped() {
	that.Called()
}

func (that *mockMetrics) OrderChanged(ascending bool) {
	that.Called(ascending)
}

func (that *mockMetrics) SessionCreated() {
	that.Called()
}
