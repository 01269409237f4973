package rps

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
)

// Choice is a committed hand. The zero value means "not chosen yet".
type Choice string

const (
	None     Choice = ""
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"

	// Hidden replaces an opponent's committed choice before the reveal.
	Hidden Choice = "hidden"
)

// Draw is the round result when both players picked the same hand.
const Draw = "Draw"

type Outcome int

const (
	Tie Outcome = iota
	FirstWins
	SecondWins
)

var beats = map[Choice]Choice{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// ParseChoice accepts full names and the single-letter forms R, P and S.
func ParseChoice(raw string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rock", "r":
		return Rock, nil
	case "paper", "p":
		return Paper, nil
	case "scissors", "s":
		return Scissors, nil
	default:
		return None, fmt.Errorf("%w: %q", apperror.ErrInvalidChoice, raw)
	}
}

// IsValid reports whether c is a real hand. None and Hidden are not.
func (c Choice) IsValid() bool {
	_, ok := beats[c]
	return ok
}

func (c Choice) MarshalJSON() ([]byte, error) {
	if c == None {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = None
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal choice: %w", err)
	}

	*c = Choice(raw)
	return nil
}

// Resolve - decides a round. Both choices must be valid.
func Resolve(first, second Choice) Outcome {
	switch {
	case first == second:
		return Tie
	case beats[first] == second:
		return FirstWins
	default:
		return SecondWins
	}
}
