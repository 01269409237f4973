package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

// memSession keeps sessions in process memory. Stored and returned values are
// clones, so callers never share state with the table.
type memSession struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
	rooms    map[string]map[string]struct{}
}

func NewMemorySessionRepository() SessionRepository {
	return &memSession{
		sessions: make(map[string]entity.Session),
		rooms:    make(map[string]map[string]struct{}),
	}
}

func (that *memSession) CreateOrUpdate(_ context.Context, session entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	id, room := session.GetID(), session.GetRoom()

	that.sessions[id] = session.Clone()

	if that.rooms[room] == nil {
		that.rooms[room] = make(map[string]struct{})
	}
	that.rooms[room][id] = struct{}{}

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}

	return session.Clone(), nil
}

func (that *memSession) ListByRoom(_ context.Context, room string) ([]entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ids := that.rooms[room]

	sessions := make([]entity.Session, 0, len(ids))
	for id := range ids {
		if session, ok := that.sessions[id]; ok {
			sessions = append(sessions, session.Clone())
		}
	}

	return sessions, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil
	}

	delete(that.sessions, id)

	room := session.GetRoom()
	delete(that.rooms[room], id)
	if len(that.rooms[room]) == 0 {
		delete(that.rooms, room)
	}

	return nil
}
