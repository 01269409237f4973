package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

const (
	sessionKeyPrefix = "session:"
	roomKeyPrefix    = "room:"
	roomKeySuffix    = ":sessions"
)

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session entity.Session) error
	GetByID(ctx context.Context, id string) (entity.Session, error)
	ListByRoom(ctx context.Context, room string) ([]entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbSession struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func roomKey(room string) string {
	return roomKeyPrefix + room + roomKeySuffix
}

func (that *dbSession) CreateOrUpdate(ctx context.Context, session entity.Session) error {
	sessionJSON, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.GetID()), sessionJSON, 0)
		pipe.SAdd(ctx, roomKey(session.GetRoom()), session.GetID())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return decodeSession(response)
}

func (that *dbSession) ListByRoom(ctx context.Context, room string) ([]entity.Session, error) {
	ids, err := that.client.SMembers(ctx, roomKey(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room sessions: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room sessions: %w", err)
	}

	sessions := make([]entity.Session, 0, len(values))
	for _, value := range values {
		// deleted between SMEMBERS and MGET
		raw, ok := value.(string)
		if !ok {
			continue
		}

		session, err := decodeSession([]byte(raw))
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	session, err := that.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, roomKey(session.GetRoom()), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	return nil
}
