package syncer

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetTicTacToe(ctx context.Context, id, viewerID string) (*entity.TicTacToe, error) {
	args := m.Called(ctx, id, viewerID)
	game, _ := args.Get(0).(*entity.TicTacToe)
	return game, args.Error(1)
}

func (m *mockAPI) PlayCell(ctx context.Context, id, userID string, cell int) (*entity.TicTacToe, error) {
	args := m.Called(ctx, id, userID, cell)
	game, _ := args.Get(0).(*entity.TicTacToe)
	return game, args.Error(1)
}

func (m *mockAPI) GetRPS(ctx context.Context, id, viewerID string) (*entity.RPS, error) {
	args := m.Called(ctx, id, viewerID)
	game, _ := args.Get(0).(*entity.RPS)
	return game, args.Error(1)
}

func (m *mockAPI) PlayChoice(ctx context.Context, id, userID string, choice rps.Choice) (*entity.RPS, error) {
	args := m.Called(ctx, id, userID, choice)
	game, _ := args.Get(0).(*entity.RPS)
	return game, args.Error(1)
}

func (m *mockAPI) NextRound(ctx context.Context, id, userID string) (*entity.RPS, error) {
	args := m.Called(ctx, id, userID)
	game, _ := args.Get(0).(*entity.RPS)
	return game, args.Error(1)
}
