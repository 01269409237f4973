package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
)

type Kind string

const (
	KindTicTacToe Kind = "tictactoe"
	KindRPS       Kind = "rps"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusReady     Status = "ready"
	StatusRevealing Status = "revealing"
	StatusFinished  Status = "finished"
)

// MaxPlayers - a session never holds more players than this.
const MaxPlayers = 2

func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindTicTacToe, KindRPS:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownKind, raw)
	}
}

// Move is the payload of a move request. Tic-tac-toe reads Cell, RPS reads Choice.
type Move struct {
	Cell   int
	Choice rps.Choice
}

// Session is one match of either kind, scoped to a room.
type Session interface {
	GetID() string
	GetRoom() string
	GetKind() Kind
	GetStatus() Status
	GetCreatedAt() time.Time

	HasPlayer(userID string) bool

	// Join adds a player. It reports false without error on a rejoin and
	// fails with apperror.ErrFull when MaxPlayers distinct players are in.
	Join(userID, userName string) (bool, error)

	// ApplyMove validates and applies a move. Stale or out-of-turn moves
	// leave the session unchanged and return nil.
	ApplyMove(userID string, move Move) error

	// IsTerminal reports whether the current round accepts no more moves.
	IsTerminal() bool

	// Snapshot returns a copy of the session as viewerID may see it.
	Snapshot(viewerID string) Session

	Summary() Summary
	Clone() Session
}

// Base holds the fields every session kind shares.
type Base struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Kind      Kind      `json:"kind"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (that *Base) GetID() string {
	return that.ID
}

func (that *Base) GetRoom() string {
	return that.Room
}

func (that *Base) GetKind() Kind {
	return that.Kind
}

func (that *Base) GetStatus() Status {
	return that.Status
}

func (that *Base) GetCreatedAt() time.Time {
	return that.CreatedAt
}

// Summary is a lobby list entry.
type Summary struct {
	ID      string   `json:"id"`
	Kind    Kind     `json:"kind"`
	Status  Status   `json:"status"`
	Players []Player `json:"players"`
	Winner  string   `json:"winner,omitempty"`
}

// NewSession - creates a session of the given kind with the creator as its only player.
func NewSession(kind Kind, id, room string, creator Player, now time.Time) (Session, error) {
	switch kind {
	case KindTicTacToe:
		return NewTicTacToe(id, room, creator, now), nil
	case KindRPS:
		return NewRPS(id, room, creator, now), nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownKind, kind)
	}
}
