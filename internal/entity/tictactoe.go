package entity

import (
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/tictactoe"
)

type TicTacToe struct {
	Base
	tictactoe.State
	Players []*TicTacToePlayer `json:"players"`
}

func NewTicTacToe(id, room string, creator Player, now time.Time) *TicTacToe {
	return &TicTacToe{
		Base: Base{
			ID:        id,
			Room:      room,
			Kind:      KindTicTacToe,
			Status:    StatusWaiting,
			CreatedAt: now,
		},
		State: tictactoe.NewState(),
		Players: []*TicTacToePlayer{
			{Player: creator, Symbol: tictactoe.PlayerX},
		},
	}
}

func (that *TicTacToe) HasPlayer(userID string) bool {
	return that.player(userID) != nil
}

func (that *TicTacToe) Join(userID, userName string) (bool, error) {
	if that.HasPlayer(userID) {
		return false, nil
	}

	if len(that.Players) >= MaxPlayers {
		return false, apperror.ErrFull
	}

	that.Players = append(that.Players, &TicTacToePlayer{
		Player: Player{ID: userID, Name: userName},
		Symbol: tictactoe.PlayerO,
	})
	that.updateStatus()

	return true, nil
}

// SymbolOf returns the symbol of userID, or "" for a non-player.
func (that *TicTacToe) SymbolOf(userID string) string {
	if player := that.player(userID); player != nil {
		return player.Symbol
	}
	return ""
}

func (that *TicTacToe) ApplyMove(userID string, move Move) error {
	next, accepted, err := tictactoe.Apply(that.State, that.SymbolOf(userID), move.Cell)
	if err != nil {
		return err
	}

	if accepted {
		that.State = next
		that.updateStatus()
	}

	return nil
}

func (that *TicTacToe) IsTerminal() bool {
	return that.State.IsTerminal()
}

func (that *TicTacToe) Snapshot(_ string) Session {
	return that.Clone()
}

func (that *TicTacToe) Summary() Summary {
	players := make([]Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, player.Player)
	}

	return Summary{
		ID:      that.ID,
		Kind:    that.Kind,
		Status:  that.Status,
		Players: players,
		Winner:  that.Winner,
	}
}

func (that *TicTacToe) Clone() Session {
	clone := *that

	if that.WinningLine != nil {
		clone.WinningLine = append([]int(nil), that.WinningLine...)
	}

	clone.Players = make([]*TicTacToePlayer, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	return &clone
}

func (that *TicTacToe) player(userID string) *TicTacToePlayer {
	for _, player := range that.Players {
		if player.ID == userID {
			return player
		}
	}
	return nil
}

func (that *TicTacToe) updateStatus() {
	switch {
	case that.State.IsTerminal():
		that.Status = StatusFinished
	case len(that.Players) == MaxPlayers:
		that.Status = StatusReady
	default:
		that.Status = StatusWaiting
	}
}
