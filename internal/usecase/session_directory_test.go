package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
	"github.com/rocketscienceinc/clipgames-backend/internal/repository"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
	"github.com/rocketscienceinc/clipgames-backend/internal/tictactoe"
)

const room = "12345"

var errRedisDown = errors.New("redis down")

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) CreateOrUpdate(ctx context.Context, session entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (entity.Session, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(entity.Session)
	return session, args.Error(1)
}

func (m *mockSessionRepo) ListByRoom(ctx context.Context, room string) ([]entity.Session, error) {
	args := m.Called(ctx, room)
	sessions, _ := args.Get(0).([]entity.Session)
	return sessions, args.Error(1)
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newTestDirectory(opts ...Option) *SessionDirectory {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionDirectory(logger, repository.NewMemorySessionRepository(), opts...)
}

func TestSessionDirectory_TicTacToe(t *testing.T) {
	ctx := context.Background()

	t.Run("Top row win end to end", func(t *testing.T) {
		directory := newTestDirectory()

		// Given: A creates a game and B joins it
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindTicTacToe)
		require.NoError(t, err)

		joined, err := directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)
		game, ok := joined.(*entity.TicTacToe)
		require.True(t, ok)
		assert.Equal(t, tictactoe.PlayerX, game.SymbolOf("A"))
		assert.Equal(t, tictactoe.PlayerO, game.SymbolOf("B"))

		// When: A plays 0, B 4, A 1, B 5, A 2
		moves := []struct {
			user string
			cell int
		}{{"A", 0}, {"B", 4}, {"A", 1}, {"B", 5}, {"A", 2}}
		for _, m := range moves {
			_, err = directory.Move(ctx, id, m.user, entity.Move{Cell: m.cell})
			require.NoError(t, err)
		}

		// Then: X wins with the top row
		session, err := directory.Get(ctx, id, "B")
		require.NoError(t, err)
		game, ok = session.(*entity.TicTacToe)
		require.True(t, ok)
		assert.Equal(t, tictactoe.PlayerX, game.Winner)
		assert.Equal(t, []int{0, 1, 2}, game.WinningLine)
		assert.Equal(t, entity.StatusFinished, game.Status)

		// And: the finished game is no longer listed
		open, err := directory.List(ctx, room, entity.KindTicTacToe)
		require.NoError(t, err)
		assert.Empty(t, open)
	})

	t.Run("Rejected moves", func(t *testing.T) {
		directory := newTestDirectory()
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindTicTacToe)
		require.NoError(t, err)
		_, err = directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)

		_, err = directory.Move(ctx, id, "C", entity.Move{Cell: 0})
		require.ErrorIs(t, err, apperror.ErrForbidden)

		_, err = directory.Move(ctx, id, "A", entity.Move{Cell: 9})
		require.ErrorIs(t, err, apperror.ErrInvalidCell)

		// out of turn returns the unchanged state
		session, err := directory.Move(ctx, id, "B", entity.Move{Cell: 0})
		require.NoError(t, err)
		assert.Equal(t, tictactoe.EmptyCell, session.(*entity.TicTacToe).Board[0])

		_, err = directory.Move(ctx, "missing", "A", entity.Move{Cell: 0})
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Creator opens while waiting", func(t *testing.T) {
		// Given: a session nobody has joined yet
		directory := newTestDirectory()
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindTicTacToe)
		require.NoError(t, err)

		// When: the creator plays the first cell
		session, err := directory.Move(ctx, id, "A", entity.Move{Cell: 0})

		// Then: the mark is stored and O is to move once someone joins
		require.NoError(t, err)
		game := session.(*entity.TicTacToe)
		assert.Equal(t, tictactoe.PlayerX, game.Board[0])
		assert.Equal(t, tictactoe.PlayerO, game.Turn)
		assert.Equal(t, entity.StatusWaiting, game.Status)

		joined, err := directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)
		assert.Equal(t, tictactoe.PlayerX, joined.(*entity.TicTacToe).Board[0])
		assert.Equal(t, entity.StatusReady, joined.GetStatus())
	})

	t.Run("Concurrent moves serialize", func(t *testing.T) {
		directory := newTestDirectory()
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindTicTacToe)
		require.NoError(t, err)
		_, err = directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)

		// When: both players hammer every cell at once
		var wg sync.WaitGroup
		for _, user := range []string{"A", "B"} {
			for cell := range tictactoe.BoardSize {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, moveErr := directory.Move(ctx, id, user, entity.Move{Cell: cell})
					assert.NoError(t, moveErr)
				}()
			}
		}
		wg.Wait()

		// Then: marks still alternate, X never trails O
		session, err := directory.Get(ctx, id, "A")
		require.NoError(t, err)
		game := session.(*entity.TicTacToe)

		var xCount, oCount int
		for _, cell := range game.Board {
			switch cell {
			case tictactoe.PlayerX:
				xCount++
			case tictactoe.PlayerO:
				oCount++
			}
		}
		assert.True(t, xCount == oCount || xCount == oCount+1, "x=%d o=%d", xCount, oCount)
		assert.Positive(t, xCount)
		assert.Zero(t, directory.locks.len())
	})
}

func TestSessionDirectory_RPS(t *testing.T) {
	ctx := context.Background()

	t.Run("Round end to end", func(t *testing.T) {
		directory := newTestDirectory()

		// Given: A creates an RPS session and B joins
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindRPS)
		require.NoError(t, err)
		assert.Contains(t, id, "rps_")
		_, err = directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)

		// When: A submits rock
		_, err = directory.Move(ctx, id, "A", entity.Move{Choice: rps.Rock})
		require.NoError(t, err)

		// Then: the round is open and B sees only that A has chosen
		session, err := directory.Get(ctx, id, "B")
		require.NoError(t, err)
		game := session.(*entity.RPS)
		assert.Equal(t, entity.StatusReady, game.Status)
		assert.Equal(t, rps.Hidden, game.Players[0].Choice)

		// When: B submits scissors
		session, err = directory.Move(ctx, id, "B", entity.Move{Choice: rps.Scissors})
		require.NoError(t, err)

		// Then: the round is revealed in A's favour
		game = session.(*entity.RPS)
		assert.Equal(t, entity.StatusRevealing, game.Status)
		assert.Equal(t, "A", game.Result)
		assert.Equal(t, 1, game.Players[0].Score)
		assert.Equal(t, 0, game.Players[1].Score)
		assert.Equal(t, rps.Rock, game.Players[0].Choice)

		// When: the next round starts
		session, err = directory.NextRound(ctx, id, "A")
		require.NoError(t, err)

		// Then: choices are unset, scores kept
		game = session.(*entity.RPS)
		assert.Equal(t, entity.StatusReady, game.Status)
		assert.Equal(t, rps.None, game.Players[0].Choice)
		assert.Equal(t, rps.None, game.Players[1].Choice)
		assert.Equal(t, 1, game.Players[0].Score)

		// And: RPS sessions are listed whatever the round status
		open, err := directory.List(ctx, room, entity.KindRPS)
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, id, open[0].ID)
	})

	t.Run("Spectators see a hidden choice", func(t *testing.T) {
		directory := newTestDirectory()
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindRPS)
		require.NoError(t, err)
		_, err = directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)
		_, err = directory.Move(ctx, id, "A", entity.Move{Choice: rps.Paper})
		require.NoError(t, err)

		session, err := directory.Move(ctx, id, "C", entity.Move{Choice: rps.Rock})
		require.ErrorIs(t, err, apperror.ErrForbidden)
		assert.Nil(t, session)

		session, err = directory.Get(ctx, id, "C")
		require.NoError(t, err)
		assert.Equal(t, rps.Hidden, session.(*entity.RPS).Players[0].Choice)
	})

	t.Run("Concurrent choices reveal once", func(t *testing.T) {
		directory := newTestDirectory()
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindRPS)
		require.NoError(t, err)
		_, err = directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _, user := range []string{"A", "B"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, moveErr := directory.Move(ctx, id, user, entity.Move{Choice: rps.Rock})
				assert.NoError(t, moveErr)
			}()
		}
		wg.Wait()

		session, err := directory.Get(ctx, id, "A")
		require.NoError(t, err)
		game := session.(*entity.RPS)
		assert.Equal(t, entity.StatusRevealing, game.Status)
		assert.Equal(t, rps.Draw, game.Result)
	})

	t.Run("Winning score is applied to new sessions", func(t *testing.T) {
		directory := newTestDirectory(WithWinningScore(3))

		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindRPS)
		require.NoError(t, err)

		session, err := directory.Get(ctx, id, "A")
		require.NoError(t, err)
		assert.Equal(t, 3, session.(*entity.RPS).WinningScore)
	})

	t.Run("Next round on tic-tac-toe", func(t *testing.T) {
		directory := newTestDirectory()
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindTicTacToe)
		require.NoError(t, err)

		_, err = directory.NextRound(ctx, id, "A")

		require.ErrorIs(t, err, apperror.ErrBadRequest)
	})
}

func TestSessionDirectory_Join(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []entity.Kind{entity.KindTicTacToe, entity.KindRPS} {
		t.Run(string(kind), func(t *testing.T) {
			directory := newTestDirectory()
			id, err := directory.Create(ctx, room, "A", "Alice", kind)
			require.NoError(t, err)

			// rejoin by the creator changes nothing
			session, err := directory.Join(ctx, id, "A", "Alice")
			require.NoError(t, err)
			assert.Len(t, session.Summary().Players, 1)

			_, err = directory.Join(ctx, id, "B", "Bob")
			require.NoError(t, err)

			_, err = directory.Join(ctx, id, "C", "Carol")
			require.ErrorIs(t, err, apperror.ErrFull)

			_, err = directory.Join(ctx, "missing", "C", "Carol")
			require.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}
}

func TestSessionDirectory_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("Leave destroys the session for both players", func(t *testing.T) {
		directory := newTestDirectory()
		id, err := directory.Create(ctx, room, "A", "Alice", entity.KindRPS)
		require.NoError(t, err)
		_, err = directory.Join(ctx, id, "B", "Bob")
		require.NoError(t, err)

		// When: B leaves
		require.NoError(t, directory.Leave(ctx, id, "B"))

		// Then: neither player can read the session
		for _, user := range []string{"A", "B"} {
			_, err = directory.Get(ctx, id, user)
			require.ErrorIs(t, err, apperror.ErrNotFound)
		}

		// And: leaving again is harmless
		require.NoError(t, directory.Leave(ctx, id, "A"))
	})

	t.Run("Storage failure", func(t *testing.T) {
		repo := &mockSessionRepo{}
		repo.On("DeleteByID", mock.Anything, "1").Return(errRedisDown).Once()
		directory := NewSessionDirectory(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)

		err := directory.Leave(ctx, "1", "A")

		require.ErrorIs(t, err, errRedisDown)
		repo.AssertExpectations(t)
	})
}

func TestSessionDirectory_List(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	directory := newTestDirectory(WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	first, err := directory.Create(ctx, room, "A", "Alice", entity.KindTicTacToe)
	require.NoError(t, err)
	second, err := directory.Create(ctx, room, "B", "Bob", entity.KindTicTacToe)
	require.NoError(t, err)
	_, err = directory.Create(ctx, room, "C", "Carol", entity.KindRPS)
	require.NoError(t, err)
	_, err = directory.Create(ctx, "other", "D", "Dan", entity.KindTicTacToe)
	require.NoError(t, err)

	summaries, err := directory.List(ctx, room, entity.KindTicTacToe)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, first, summaries[0].ID)
	assert.Equal(t, second, summaries[1].ID)
	assert.Equal(t, []entity.Player{{ID: "A", Name: "Alice"}}, summaries[0].Players)
}

func TestSessionDirectory_ClearRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Cascades to every kind", func(t *testing.T) {
		directory := newTestDirectory()
		ttt, err := directory.Create(ctx, room, "A", "Alice", entity.KindTicTacToe)
		require.NoError(t, err)
		rpsID, err := directory.Create(ctx, room, "B", "Bob", entity.KindRPS)
		require.NoError(t, err)
		kept, err := directory.Create(ctx, "other", "C", "Carol", entity.KindRPS)
		require.NoError(t, err)

		removed, err := directory.ClearRoom(ctx, room)

		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		for _, id := range []string{ttt, rpsID} {
			_, err = directory.Get(ctx, id, "A")
			require.ErrorIs(t, err, apperror.ErrNotFound)
		}
		_, err = directory.Get(ctx, kept, "C")
		require.NoError(t, err)
	})

	t.Run("List failure", func(t *testing.T) {
		repo := &mockSessionRepo{}
		repo.On("ListByRoom", mock.Anything, room).Return(nil, errRedisDown).Once()
		directory := NewSessionDirectory(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)

		removed, err := directory.ClearRoom(ctx, room)

		require.ErrorIs(t, err, errRedisDown)
		assert.Zero(t, removed)
	})
}

func TestSessionDirectory_StoreFailure(t *testing.T) {
	ctx := context.Background()

	// Given: a repository that loads fine but cannot store
	game := entity.NewTicTacToe("1", room, entity.Player{ID: "A", Name: "Alice"}, time.Now())
	repo := &mockSessionRepo{}
	repo.On("GetByID", mock.Anything, "1").Return(game, nil).Once()
	repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(errRedisDown).Once()
	directory := NewSessionDirectory(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)

	// When: a player joins
	_, err := directory.Join(ctx, "1", "B", "Bob")

	// Then: the storage error is surfaced
	require.ErrorIs(t, err, errRedisDown)
	repo.AssertExpectations(t)
}
