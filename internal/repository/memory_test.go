package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

var creator = entity.Player{ID: "alice", Name: "Alice"}

func TestMemorySessionRepository(t *testing.T) {
	t.Run("GetByID returns a copy", func(t *testing.T) {
		ctx := context.Background()
		repo := NewMemorySessionRepository()

		// Given: a stored session
		game := entity.NewTicTacToe("1", "12345", creator, time.Now())
		require.NoError(t, repo.CreateOrUpdate(ctx, game))

		// When: the caller mutates both its original and a loaded copy
		game.Players[0].Name = "changed"
		loaded, err := repo.GetByID(ctx, "1")
		require.NoError(t, err)
		_, err = loaded.Join("bob", "Bob")
		require.NoError(t, err)

		// Then: the stored session is untouched
		stored, err := repo.GetByID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []entity.Player{creator}, stored.Summary().Players)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		repo := NewMemorySessionRepository()

		_, err := repo.GetByID(context.Background(), "9999999")

		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("ListByRoom is scoped to the room", func(t *testing.T) {
		ctx := context.Background()
		repo := NewMemorySessionRepository()

		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewTicTacToe("1", "12345", creator, time.Now())))
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewRPS("rps_2", "12345", creator, time.Now())))
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewTicTacToe("3", "other", creator, time.Now())))

		sessions, err := repo.ListByRoom(ctx, "12345")
		require.NoError(t, err)

		ids := make([]string, 0, len(sessions))
		for _, session := range sessions {
			ids = append(ids, session.GetID())
		}
		assert.ElementsMatch(t, []string{"1", "rps_2"}, ids)
	})

	t.Run("DeleteByID removes from the room", func(t *testing.T) {
		ctx := context.Background()
		repo := NewMemorySessionRepository()
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewTicTacToe("1", "12345", creator, time.Now())))

		require.NoError(t, repo.DeleteByID(ctx, "1"))

		_, err := repo.GetByID(ctx, "1")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		sessions, err := repo.ListByRoom(ctx, "12345")
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("DeleteByID of a missing session is a no-op", func(t *testing.T) {
		repo := NewMemorySessionRepository()

		assert.NoError(t, repo.DeleteByID(context.Background(), "9999999"))
	})
}
