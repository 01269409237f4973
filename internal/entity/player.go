package entity

import "github.com/rocketscienceinc/clipgames-backend/internal/rps"

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TicTacToePlayer struct {
	Player
	Symbol string `json:"symbol"`
}

type RPSPlayer struct {
	Player
	Choice rps.Choice `json:"choice"`
	Score  int        `json:"score"`
}
