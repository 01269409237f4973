package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
)

const DefaultRevealDelay = 1500 * time.Millisecond

type rpsAPI interface {
	GetRPS(ctx context.Context, id, viewerID string) (*entity.RPS, error)
	PlayChoice(ctx context.Context, id, userID string, choice rps.Choice) (*entity.RPS, error)
	NextRound(ctx context.Context, id, userID string) (*entity.RPS, error)
}

// RPSView is a client's copy of a rock-paper-scissors session. When a round
// is revealed the previous state stays visible for the reveal delay.
type RPSView struct {
	mu sync.Mutex

	api    rpsAPI
	id     string
	userID string

	revealDelay time.Duration
	now         func() time.Time

	state   *entity.RPS
	version uint64

	held     *entity.RPS
	revealAt time.Time
}

type RPSViewOption func(*RPSView)

func WithRevealDelay(delay time.Duration) RPSViewOption {
	return func(that *RPSView) {
		that.revealDelay = delay
	}
}

func WithNow(now func() time.Time) RPSViewOption {
	return func(that *RPSView) {
		that.now = now
	}
}

func NewRPSView(api rpsAPI, id, userID string, opts ...RPSViewOption) *RPSView {
	view := &RPSView{
		api:         api,
		id:          id,
		userID:      userID,
		revealDelay: DefaultRevealDelay,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(view)
	}

	return view
}

// State returns the latest known state, ignoring the reveal delay.
func (that *RPSView) State() *entity.RPS {
	that.mu.Lock()
	defer that.mu.Unlock()

	return cloneRPS(that.state)
}

// Visible returns what the player should see right now.
func (that *RPSView) Visible() *entity.RPS {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.held != nil {
		if that.now().Before(that.revealAt) {
			return cloneRPS(that.held)
		}
		that.held = nil
	}

	return cloneRPS(that.state)
}

func (that *RPSView) Refresh(ctx context.Context) error {
	that.mu.Lock()
	started := that.version
	that.mu.Unlock()

	game, err := that.api.GetRPS(ctx, that.id, that.userID)
	if err != nil {
		return fmt.Errorf("failed to refresh: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.version == started {
		that.observe(game)
	}

	return nil
}

// Choose - marks the choice locally and sends it.
func (that *RPSView) Choose(ctx context.Context, choice rps.Choice) error {
	that.mu.Lock()
	if that.state == nil {
		that.mu.Unlock()
		return ErrNoState
	}

	predicted := cloneRPS(that.state)
	if err := predicted.ApplyMove(that.userID, entity.Move{Choice: choice}); err != nil {
		that.mu.Unlock()
		return fmt.Errorf("failed to choose %s: %w", choice, err)
	}

	that.observe(predicted)
	that.version++
	version := that.version
	that.mu.Unlock()

	game, err := that.api.PlayChoice(ctx, that.id, that.userID, choice)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.version == version {
		that.observe(game)
	}

	return nil
}

func (that *RPSView) NextRound(ctx context.Context) error {
	game, err := that.api.NextRound(ctx, that.id, that.userID)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.version++
	that.held = nil
	that.observe(game)

	return nil
}

// observe adopts game and starts the reveal hold on a transition into a locked round.
func (that *RPSView) observe(game *entity.RPS) {
	if that.state != nil && !that.state.IsTerminal() && game.IsTerminal() {
		that.held = that.state
		that.revealAt = that.now().Add(that.revealDelay)
	}

	that.state = game
}

func cloneRPS(game *entity.RPS) *entity.RPS {
	if game == nil {
		return nil
	}

	return game.Clone().(*entity.RPS)
}
