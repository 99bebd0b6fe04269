package game

import (
	"context"
	"errors"
	"testing"

	game_constants "Impostor/constants/game"
	"Impostor/models/postgres"
	"Impostor/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStartGame(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.newLobby(t, 5)
	_, err := f.svc.UpdateSettings(ctx, code, session(0), SettingsPatch{ImpostorCount: intPtr(2)})
	require.NoError(t, err)
	f.rec.Reset()

	summary, err := f.svc.StartGame(ctx, code, session(0))
	require.NoError(t, err)
	assert.Equal(t, "playing", summary.Status)
	assert.Equal(t, 1, summary.CurrentRound)
	assert.Equal(t, 2, summary.ImpostorCount)
	assert.Equal(t, "test", summary.WordCategory)

	l := f.lobby(t, code)
	players := f.players(t, code)
	require.NotNil(t, l.WordID)

	var word postgres.Word
	require.NoError(t, f.db.First(&word, *l.WordID).Error)
	require.NotNil(t, word.ImpostorWordID)

	impostors := 0
	ids := make([]uint, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
		require.NotNil(t, p.WordID)
		if p.IsImpostor {
			impostors++
			assert.Equal(t, *word.ImpostorWordID, *p.WordID)
			assert.Equal(t, 1, p.ImpostorStreak)
		} else {
			assert.Equal(t, word.ID, *p.WordID)
			assert.Zero(t, p.ImpostorStreak)
		}
		require.NotNil(t, p.TurnPosition)
		assert.Equal(t, p.ID, l.TurnOrderIDs()[*p.TurnPosition])
	}
	assert.Equal(t, 2, impostors)
	assert.ElementsMatch(t, ids, l.TurnOrderIDs())
	assert.Equal(t, 0, l.CurrentTurnIndex)
	assert.NotNil(t, l.TurnStartedAt)
	assertTurnInvariant(t, l, players)

	started := f.rec.Named(events.GameStarted)
	require.Len(t, started, 1)
	payload := started[0].Payload.(events.GameStartedPayload)
	assert.Equal(t, 1, payload.CurrentRound)
	assert.Equal(t, "playing", payload.LobbyStatus)
	assert.Equal(t, code, f.rec.Events()[0].Topic)
}

func TestStartGameRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("only the host", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 3)
		_, err := f.svc.StartGame(ctx, code, session(1))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("needs enough players", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, game_constants.MinPlayersToStart-1)
		_, err := f.svc.StartGame(ctx, code, session(0))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("not twice", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 3)
		_, err := f.svc.StartGame(ctx, code, session(0))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("no word left", func(t *testing.T) {
		f := newFixtureWith(t, fixtureOpts{cooldown: 100})
		code := f.newLobby(t, 3)

		_, err := f.svc.StartGame(ctx, code, session(0))
		assert.ErrorIs(t, err, ErrNoWordAvailable)

		l := f.lobby(t, code)
		assert.Equal(t, postgres.LobbyWaiting, l.Status)
		assert.Nil(t, l.WordID)
		for _, p := range f.players(t, code) {
			assert.False(t, p.IsImpostor)
			assert.Nil(t, p.WordID)
		}
		assert.Empty(t, f.rec.Named(events.GameStarted))
	})
}

func TestDrawImpostors(t *testing.T) {
	t.Run("players on a streak sit out", func(t *testing.T) {
		players := []*postgres.Player{
			{ID: 1, ImpostorStreak: game_constants.MaxImpostorStreak},
			{ID: 2, ImpostorStreak: 2},
			{ID: 3},
		}
		for i := 0; i < 50; i++ {
			chosen := drawImpostors(players, 1)
			require.Len(t, chosen, 1)
			assert.False(t, chosen[1], "capped player drawn")
		}
	})

	t.Run("everyone capped falls back to everyone", func(t *testing.T) {
		players := []*postgres.Player{
			{ID: 1, ImpostorStreak: 3},
			{ID: 2, ImpostorStreak: 4},
		}
		chosen := drawImpostors(players, 1)
		assert.Len(t, chosen, 1)
	})

	t.Run("count is bounded by the pool", func(t *testing.T) {
		players := []*postgres.Player{
			{ID: 1, ImpostorStreak: 3},
			{ID: 2},
			{ID: 3},
		}
		chosen := drawImpostors(players, 5)
		assert.Equal(t, map[uint]bool{2: true, 3: true}, chosen)
	})
}

func TestRestartGame(t *testing.T) {
	ctx := context.Background()

	finishLobby := func(t *testing.T, f *fixture, code string) {
		t.Helper()
		require.NoError(t, f.db.Model(&postgres.Lobby{}).Where("code = ?", code).Updates(map[string]any{
			"status":      postgres.LobbyFinished,
			"game_result": postgres.CrewWins,
		}).Error)
	}

	t.Run("deals a new round", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 4)
		first := *f.lobby(t, code).WordID
		finishLobby(t, f, code)

		_, err := f.svc.RestartGame(ctx, code, session(1))
		assert.ErrorIs(t, err, ErrUnauthorized)

		summary, err := f.svc.RestartGame(ctx, code, session(0))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.CurrentRound)

		l := f.lobby(t, code)
		assert.Equal(t, postgres.LobbyPlaying, l.Status)
		assert.Nil(t, l.GameResult)
		assert.NotEqual(t, first, *l.WordID)
		assertTurnInvariant(t, l, f.players(t, code))
		assert.Len(t, f.rec.Named(events.GameStarted), 1)
	})

	t.Run("only finished lobbies", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 3)
		_, err := f.svc.RestartGame(ctx, code, session(0))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("streaks carry over and cap", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 3)
		finishLobby(t, f, code)
		// everyone was impostor three times running
		require.NoError(t, f.db.Model(&postgres.Player{}).Where("lobby_id = ?", f.lobby(t, code).ID).
			Updates(map[string]any{"is_impostor": true, "impostor_streak": 3}).Error)

		_, err := f.svc.RestartGame(ctx, code, session(0))
		require.NoError(t, err)

		streaks := map[int]int{}
		for _, p := range f.players(t, code) {
			streaks[p.ImpostorStreak]++
			if p.IsImpostor {
				assert.Equal(t, 4, p.ImpostorStreak)
			}
		}
		assert.Equal(t, map[int]int{4: 1, 0: 2}, streaks)
	})

	t.Run("capped player is skipped", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 3)
		players := f.players(t, code)
		f.setImpostors(t, code, players[0].ID)
		require.NoError(t, f.db.Model(&postgres.Player{}).Where("id = ?", players[0].ID).
			Update("impostor_streak", game_constants.MaxImpostorStreak).Error)
		finishLobby(t, f, code)

		_, err := f.svc.RestartGame(ctx, code, session(0))
		require.NoError(t, err)

		for _, p := range f.players(t, code) {
			if p.ID == players[0].ID {
				assert.False(t, p.IsImpostor)
				assert.Zero(t, p.ImpostorStreak)
			}
			if p.IsImpostor {
				assert.Equal(t, 1, p.ImpostorStreak)
			}
		}
	})
}

func TestRestartFinished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.startedLobby(t, 3)
	id := f.lobby(t, code).ID

	// still playing, nothing to do
	require.NoError(t, f.svc.RestartFinished(ctx, id))
	assert.Equal(t, 1, f.lobby(t, code).CurrentRound)
	assert.Empty(t, f.rec.Events())

	// unknown lobbies are ignored
	assert.NoError(t, f.svc.RestartFinished(ctx, id+1000))
}

type mockSelector struct {
	mock.Mock
}

func (m *mockSelector) SelectWordForGame(ctx context.Context, db *gorm.DB, language string) (*postgres.Word, error) {
	args := m.Called(language)
	word, _ := args.Get(0).(*postgres.Word)
	return word, args.Error(1)
}

func TestStartGameSelectorFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.newLobby(t, 3)

	selector := &mockSelector{}
	selector.On("SelectWordForGame", "ro").Return(nil, errors.New("connection reset")).Once()
	svc := NewService(f.db, selector, f.ledger, f.rec, Options{Language: "ro"})

	_, err := svc.StartGame(ctx, code, session(0))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoWordAvailable)
	assert.Equal(t, postgres.LobbyWaiting, f.lobby(t, code).Status)
	selector.AssertExpectations(t)
}
