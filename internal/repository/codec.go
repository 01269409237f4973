package repository

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

// envelope tags the stored json with the session kind so it can be decoded
// into the right variant.
type envelope struct {
	Kind    entity.Kind     `json:"kind"`
	Session json.RawMessage `json:"session"`
}

func encodeSession(session entity.Session) ([]byte, error) {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	data, err := json.Marshal(envelope{Kind: session.GetKind(), Session: sessionJSON})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session envelope: %w", err)
	}

	return data, nil
}

func decodeSession(data []byte) (entity.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session envelope: %w", err)
	}

	var session entity.Session
	switch env.Kind {
	case entity.KindTicTacToe:
		session = &entity.TicTacToe{}
	case entity.KindRPS:
		session = &entity.RPS{}
	default:
		return nil, fmt.Errorf("failed to decode session: %w: %q", apperror.ErrUnknownKind, env.Kind)
	}

	if err := json.Unmarshal(env.Session, session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return session, nil
}
