package entity

import (
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
)

type RPS struct {
	Base
	Result       string       `json:"result"`
	WinningScore int          `json:"winningScore,omitempty"`
	Players      []*RPSPlayer `json:"players"`
}

func NewRPS(id, room string, creator Player, now time.Time) *RPS {
	return &RPS{
		Base: Base{
			ID:        id,
			Room:      room,
			Kind:      KindRPS,
			Status:    StatusWaiting,
			CreatedAt: now,
		},
		Players: []*RPSPlayer{
			{Player: creator},
		},
	}
}

func (that *RPS) HasPlayer(userID string) bool {
	return that.player(userID) != nil
}

func (that *RPS) Join(userID, userName string) (bool, error) {
	if that.HasPlayer(userID) {
		return false, nil
	}

	if len(that.Players) >= MaxPlayers {
		return false, apperror.ErrFull
	}

	that.Players = append(that.Players, &RPSPlayer{
		Player: Player{ID: userID, Name: userName},
	})

	if that.Status == StatusWaiting {
		that.Status = StatusReady
	}

	return true, nil
}

func (that *RPS) ApplyMove(userID string, move Move) error {
	if !move.Choice.IsValid() {
		return apperror.ErrInvalidChoice
	}

	player := that.player(userID)
	if player == nil {
		return apperror.ErrForbidden
	}

	if that.IsTerminal() {
		return nil
	}

	player.Choice = move.Choice

	if that.bothCommitted() {
		that.reveal()
	}

	return nil
}

// NextRound - starts a new round after a reveal. Scores are kept.
func (that *RPS) NextRound() {
	if that.Status != StatusRevealing {
		return
	}

	that.Status = StatusReady
	that.Result = ""
	for _, player := range that.Players {
		player.Choice = rps.None
	}
}

func (that *RPS) IsTerminal() bool {
	return that.Status == StatusRevealing || that.Status == StatusFinished
}

// Snapshot hides the other player's committed choice until the round is revealed.
func (that *RPS) Snapshot(viewerID string) Session {
	clone := that.clone()

	if that.IsTerminal() {
		return clone
	}

	for _, player := range clone.Players {
		if player.ID != viewerID && player.Choice != rps.None {
			player.Choice = rps.Hidden
		}
	}

	return clone
}

func (that *RPS) Summary() Summary {
	players := make([]Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, player.Player)
	}

	return Summary{
		ID:      that.ID,
		Kind:    that.Kind,
		Status:  that.Status,
		Players: players,
	}
}

func (that *RPS) Clone() Session {
	return that.clone()
}

func (that *RPS) clone() *RPS {
	clone := *that

	clone.Players = make([]*RPSPlayer, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	return &clone
}

func (that *RPS) player(userID string) *RPSPlayer {
	for _, player := range that.Players {
		if player.ID == userID {
			return player
		}
	}
	return nil
}

// bothCommitted is false while an opponent's choice is only known as hidden.
func (that *RPS) bothCommitted() bool {
	if len(that.Players) != MaxPlayers {
		return false
	}

	for _, player := range that.Players {
		if !player.Choice.IsValid() {
			return false
		}
	}

	return true
}

func (that *RPS) reveal() {
	first, second := that.Players[0], that.Players[1]

	that.Status = StatusRevealing

	switch rps.Resolve(first.Choice, second.Choice) {
	case rps.Tie:
		that.Result = rps.Draw
		return
	case rps.FirstWins:
		that.Result = first.ID
		first.Score++
	case rps.SecondWins:
		that.Result = second.ID
		second.Score++
	}

	if that.WinningScore > 0 && (first.Score >= that.WinningScore || second.Score >= that.WinningScore) {
		that.Status = StatusFinished
	}
}
