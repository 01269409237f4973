package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	BoardSize = 9
)

// WinCombos - every line that wins the game: 3 rows, 3 columns, 2 diagonals.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// State is the rule-relevant part of a tic-tac-toe session.
type State struct {
	Board       [BoardSize]string `json:"board"`
	Turn        string            `json:"turn"`
	Winner      string            `json:"winner"`
	WinningLine []int             `json:"winningLine"`
	IsDraw      bool              `json:"isDraw"`
}

// Result is the outcome of a board evaluation.
type Result struct {
	Winner string
	Line   []int
	Draw   bool
}

func NewState() State {
	return State{Turn: PlayerX}
}

func (that State) IsTerminal() bool {
	return that.Winner != "" || that.IsDraw
}

// Apply - applies a move by the player holding symbol to a copy of state.
//
// An empty symbol means the caller is not a player of the session. Moves on a
// finished board, on an occupied cell or out of turn are not errors: the state
// is returned unchanged with accepted == false.
func Apply(state State, symbol string, cell int) (State, bool, error) {
	if cell < 0 || cell >= BoardSize {
		return state, false, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if state.IsTerminal() || state.Board[cell] != EmptyCell {
		return state, false, nil
	}

	if symbol == "" {
		return state, false, apperror.ErrForbidden
	}

	if symbol != state.Turn {
		return state, false, nil
	}

	next := state
	next.Board[cell] = symbol

	result := CheckBoard(next.Board)
	switch {
	case result.Winner != "":
		next.Winner = result.Winner
		next.WinningLine = result.Line
	case result.Draw:
		next.IsDraw = true
	default:
		next.Turn = ToggleMark(symbol)
	}

	return next, true, nil
}

// CheckBoard - evaluates all winning lines, then fullness.
func CheckBoard(board [BoardSize]string) Result {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Result{Winner: a, Line: []int{combo[0], combo[1], combo[2]}}
		}
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return Result{}
		}
	}

	return Result{Draw: true}
}

func ToggleMark(currentMark string) string {
	if currentMark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
