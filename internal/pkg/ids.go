package pkg

import (
	"github.com/google/uuid"

	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

const rpsIDPrefix = "rps_"

// GenerateSessionID - generates a new session id. Rock-paper-scissors ids
// carry a prefix so the two kinds never share an id.
func GenerateSessionID(kind entity.Kind) string {
	id := uuid.NewString()
	if kind == entity.KindRPS {
		return rpsIDPrefix + id
	}
	return id
}

// GeneratePlayerID - generates the random per-client id a player is known by.
func GeneratePlayerID() string {
	return uuid.NewString()
}
