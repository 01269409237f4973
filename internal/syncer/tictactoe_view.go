package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

var ErrNoState = errors.New("no session state yet")

type ticTacToeAPI interface {
	GetTicTacToe(ctx context.Context, id, viewerID string) (*entity.TicTacToe, error)
	PlayCell(ctx context.Context, id, userID string, cell int) (*entity.TicTacToe, error)
}

// TicTacToeView is a client's copy of a tic-tac-toe session. Own moves are
// applied locally with the server's rules before the server answers.
type TicTacToeView struct {
	mu sync.Mutex

	api    ticTacToeAPI
	id     string
	userID string

	state *entity.TicTacToe
	// bumped on every local move; polls started before it are stale
	version uint64
}

func NewTicTacToeView(api ticTacToeAPI, id, userID string) *TicTacToeView {
	return &TicTacToeView{
		api:    api,
		id:     id,
		userID: userID,
	}
}

// State returns a copy of the current view, or nil before the first refresh.
func (that *TicTacToeView) State() *entity.TicTacToe {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state == nil {
		return nil
	}

	return that.state.Clone().(*entity.TicTacToe)
}

// Refresh - replaces the view with the server state unless a local move
// happened while the request was in flight.
func (that *TicTacToeView) Refresh(ctx context.Context) error {
	that.mu.Lock()
	started := that.version
	that.mu.Unlock()

	game, err := that.api.GetTicTacToe(ctx, that.id, that.userID)
	if err != nil {
		return fmt.Errorf("failed to refresh: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.version == started {
		that.state = game
	}

	return nil
}

// Play - paints the move locally, sends it and adopts the server's answer.
func (that *TicTacToeView) Play(ctx context.Context, cell int) error {
	that.mu.Lock()
	if that.state == nil {
		that.mu.Unlock()
		return ErrNoState
	}

	predicted := that.state.Clone().(*entity.TicTacToe)
	if err := predicted.ApplyMove(that.userID, entity.Move{Cell: cell}); err != nil {
		that.mu.Unlock()
		return fmt.Errorf("failed to play cell %d: %w", cell, err)
	}

	that.state = predicted
	that.version++
	version := that.version
	that.mu.Unlock()

	game, err := that.api.PlayCell(ctx, that.id, that.userID, cell)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.version == version {
		that.state = game
	}

	return nil
}
