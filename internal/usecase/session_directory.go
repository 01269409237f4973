package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
	"github.com/rocketscienceinc/clipgames-backend/internal/pkg"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session entity.Session) error
	GetByID(ctx context.Context, id string) (entity.Session, error)
	ListByRoom(ctx context.Context, room string) ([]entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// SessionDirectory owns every game session. Mutations of one session are
// serialized: load, mutate and store happen under the session's lock.
type SessionDirectory struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	locks       *sessionLocks

	winningScore int
	now          func() time.Time
}

type Option func(*SessionDirectory)

// WithWinningScore - rock-paper-scissors matches end once a player reaches score.
// Zero means rounds go on until a player leaves.
func WithWinningScore(score int) Option {
	return func(that *SessionDirectory) {
		that.winningScore = score
	}
}

func WithClock(now func() time.Time) Option {
	return func(that *SessionDirectory) {
		that.now = now
	}
}

func NewSessionDirectory(logger *slog.Logger, sessionRepo sessionRepo, opts ...Option) *SessionDirectory {
	directory := &SessionDirectory{
		logger:      logger.With("component", "session_directory"),
		sessionRepo: sessionRepo,
		locks:       newSessionLocks(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(directory)
	}

	return directory
}

// Create - creates a session with the creator as its only player and returns its id.
func (that *SessionDirectory) Create(ctx context.Context, room, userID, userName string, kind entity.Kind) (string, error) {
	log := that.logger.With("method", "Create")

	id := pkg.GenerateSessionID(kind)

	session, err := entity.NewSession(kind, id, room, entity.Player{ID: userID, Name: userName}, that.now())
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	if game, ok := session.(*entity.RPS); ok {
		game.WinningScore = that.winningScore
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	log.Debug("session created", "id", id, "room", room, "kind", kind, "user", userID)

	return id, nil
}

// Join - adds the user to the session. Joining twice is not an error.
func (that *SessionDirectory) Join(ctx context.Context, id, userID, userName string) (entity.Session, error) {
	log := that.logger.With("method", "Join")

	session, err := that.mutate(ctx, id, func(session entity.Session) (bool, error) {
		joined, err := session.Join(userID, userName)
		if err != nil {
			return false, fmt.Errorf("failed to join session %s: %w", id, err)
		}

		if joined {
			log.Debug("player joined", "id", id, "user", userID)
		}

		return joined, nil
	})
	if err != nil {
		return nil, err
	}

	return session.Snapshot(userID), nil
}

// Get - returns the session as viewerID may see it.
func (that *SessionDirectory) Get(ctx context.Context, id, viewerID string) (entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session.Snapshot(viewerID), nil
}

// List - returns the open sessions of kind in room, oldest first. Finished
// tic-tac-toe games are left out; rock-paper-scissors sessions are always listed.
func (that *SessionDirectory) List(ctx context.Context, room string, kind entity.Kind) ([]entity.Summary, error) {
	sessions, err := that.sessionRepo.ListByRoom(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].GetCreatedAt().Before(sessions[j].GetCreatedAt())
	})

	summaries := make([]entity.Summary, 0, len(sessions))
	for _, session := range sessions {
		if session.GetKind() != kind {
			continue
		}

		if kind == entity.KindTicTacToe && session.IsTerminal() {
			continue
		}

		summaries = append(summaries, session.Summary())
	}

	return summaries, nil
}

// Move - applies a move and returns the session as the mover sees it.
func (that *SessionDirectory) Move(ctx context.Context, id, userID string, move entity.Move) (entity.Session, error) {
	session, err := that.mutate(ctx, id, func(session entity.Session) (bool, error) {
		if err := session.ApplyMove(userID, move); err != nil {
			return false, fmt.Errorf("failed to apply move: %w", err)
		}

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return session.Snapshot(userID), nil
}

// NextRound - starts the next rock-paper-scissors round after a reveal.
func (that *SessionDirectory) NextRound(ctx context.Context, id, viewerID string) (entity.Session, error) {
	session, err := that.mutate(ctx, id, func(session entity.Session) (bool, error) {
		game, ok := session.(*entity.RPS)
		if !ok {
			return false, fmt.Errorf("%w: next round on a %s session", apperror.ErrBadRequest, session.GetKind())
		}

		changed := game.Status == entity.StatusRevealing
		game.NextRound()

		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	return session.Snapshot(viewerID), nil
}

// Leave - destroys the session for both players. Leaving an unknown session is not an error.
func (that *SessionDirectory) Leave(ctx context.Context, id, userID string) error {
	log := that.logger.With("method", "Leave")

	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	log.Debug("session destroyed", "id", id, "user", userID)

	return nil
}

// ClearRoom - destroys every session in room and reports how many were removed.
func (that *SessionDirectory) ClearRoom(ctx context.Context, room string) (int, error) {
	log := that.logger.With("method", "ClearRoom")

	sessions, err := that.sessionRepo.ListByRoom(ctx, room)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	removed := 0
	for _, session := range sessions {
		if err = that.delete(ctx, session.GetID()); err != nil {
			return removed, err
		}
		removed++
	}

	log.Info("room cleared", "room", room, "removed", removed)

	return removed, nil
}

func (that *SessionDirectory) delete(ctx context.Context, id string) error {
	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	return nil
}

// mutate loads the session, runs fn on it and stores it when fn reports a change.
func (that *SessionDirectory) mutate(ctx context.Context, id string, fn func(entity.Session) (bool, error)) (entity.Session, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	changed, err := fn(session)
	if err != nil {
		return nil, err
	}

	if !changed {
		return session, nil
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

