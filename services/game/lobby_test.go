package game

import (
	"context"
	"strings"
	"testing"

	"Impostor/models/postgres"
	"Impostor/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLobby(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("defaults and host seat", func(t *testing.T) {
		seat, err := f.svc.CreateLobby(ctx, "host", CreateLobbyInput{PlayerName: "  Ana  ", LobbyName: "Friday"})
		require.NoError(t, err)

		assert.Len(t, seat.Code, postgres.CodeLength)
		assert.True(t, seat.IsHost)
		assert.Equal(t, "waiting", seat.Status)

		l := f.lobby(t, seat.Code)
		assert.Equal(t, postgres.DefaultSettings(), l.LobbySettings())
		require.NotNil(t, l.Name)
		assert.Equal(t, "Friday", *l.Name)

		players := f.players(t, seat.Code)
		require.Len(t, players, 1)
		assert.Equal(t, "Ana", players[0].Name)
		assert.True(t, players[0].IsHost)
	})

	t.Run("settings patch is merged onto defaults", func(t *testing.T) {
		seat, err := f.svc.CreateLobby(ctx, "host", CreateLobbyInput{
			PlayerName: "Ana",
			Settings:   &SettingsPatch{ImpostorCount: intPtr(2), VotingTime: intPtr(45)},
		})
		require.NoError(t, err)

		settings := f.lobby(t, seat.Code).LobbySettings()
		assert.Equal(t, 2, settings.ImpostorCount)
		assert.Equal(t, 45, settings.VotingTime)
		assert.Equal(t, 10, settings.MaxPlayers)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		tests := []struct {
			name  string
			in    CreateLobbyInput
			field string
		}{
			{"blank name", CreateLobbyInput{PlayerName: "   "}, "player_name"},
			{"long name", CreateLobbyInput{PlayerName: strings.Repeat("a", 31)}, "player_name"},
			{"long lobby name", CreateLobbyInput{PlayerName: "Ana", LobbyName: strings.Repeat("a", 51)}, "lobby_name"},
			{"too many impostors", CreateLobbyInput{PlayerName: "Ana", Settings: &SettingsPatch{ImpostorCount: intPtr(6)}}, "impostor_count"},
			{"short discussion", CreateLobbyInput{PlayerName: "Ana", Settings: &SettingsPatch{DiscussionTime: intPtr(5)}}, "discussion_time"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.CreateLobby(ctx, "host", tt.in)
				require.ErrorIs(t, err, ErrValidation)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.field)
			})
		}
	})
}

func TestJoinLobby(t *testing.T) {
	ctx := context.Background()

	t.Run("announces the new player to the others", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 1)
		f.rec.Reset()

		seat, err := f.svc.JoinLobby(ctx, strings.ToLower(code), "guest", JoinLobbyInput{PlayerName: "Bo"})
		require.NoError(t, err)
		assert.False(t, seat.IsHost)

		joined := f.rec.Named(events.PlayerJoined)
		require.Len(t, joined, 1)
		assert.Equal(t, seat.PlayerID, joined[0].Except)
		payload := joined[0].Payload.(events.PlayerJoinedPayload)
		assert.Equal(t, 2, payload.PlayerCount)
		assert.Equal(t, "Bo", payload.Player.Name)
	})

	t.Run("same session gets its seat back", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 2)
		f.rec.Reset()

		seat, err := f.svc.JoinLobby(ctx, code, session(1), JoinLobbyInput{PlayerName: "renamed"})
		require.NoError(t, err)

		assert.Equal(t, f.players(t, code)[1].ID, seat.PlayerID)
		assert.Len(t, f.players(t, code), 2)
		assert.Empty(t, f.rec.Events())
	})

	t.Run("full lobby", func(t *testing.T) {
		f := newFixture(t)
		seat, err := f.svc.CreateLobby(ctx, "host", CreateLobbyInput{
			PlayerName: "Ana",
			Settings:   &SettingsPatch{MaxPlayers: intPtr(2)},
		})
		require.NoError(t, err)
		_, err = f.svc.JoinLobby(ctx, seat.Code, "b", JoinLobbyInput{PlayerName: "Bo"})
		require.NoError(t, err)

		_, err = f.svc.JoinLobby(ctx, seat.Code, "c", JoinLobbyInput{PlayerName: "Cy"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("game in progress", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 3)

		_, err := f.svc.JoinLobby(ctx, code, "late", JoinLobbyInput{PlayerName: "Late"})
		assert.ErrorIs(t, err, ErrConflict)

		// a seated player reconnecting mid-game is fine
		_, err = f.svc.JoinLobby(ctx, code, session(2), JoinLobbyInput{PlayerName: "player-2"})
		assert.NoError(t, err)
	})

	t.Run("finished or unknown lobby", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 2)
		require.NoError(t, f.db.Model(&postgres.Lobby{}).Where("code = ?", code).Update("status", postgres.LobbyFinished).Error)

		_, err := f.svc.JoinLobby(ctx, code, "late", JoinLobbyInput{PlayerName: "Late"})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = f.svc.JoinLobby(ctx, "NOPE42", "late", JoinLobbyInput{PlayerName: "Late"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLeaveLobby(t *testing.T) {
	ctx := context.Background()

	t.Run("host leaving promotes exactly one player", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 4)
		before := f.players(t, code)

		require.NoError(t, f.svc.LeaveLobby(ctx, code, session(0)))

		after := f.players(t, code)
		require.Len(t, after, 3)
		hosts := 0
		for _, p := range after {
			if p.IsHost {
				hosts++
				assert.Equal(t, before[1].ID, p.ID)
			}
		}
		assert.Equal(t, 1, hosts)
		assert.Equal(t, postgres.LobbyWaiting, f.lobby(t, code).Status)

		left := f.rec.Named(events.PlayerLeft)
		require.Len(t, left, 1)
		payload := left[0].Payload.(events.PlayerLeftPayload)
		assert.Equal(t, before[0].ID, payload.PlayerID)
		require.NotNil(t, payload.NewHostID)
		assert.Equal(t, before[1].ID, *payload.NewHostID)
	})

	t.Run("last player leaving deletes the lobby", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 1)

		require.NoError(t, f.svc.LeaveLobby(ctx, code, session(0)))

		var count int64
		require.NoError(t, f.db.Model(&postgres.Lobby{}).Where("code = ?", code).Count(&count).Error)
		assert.Zero(t, count)
		_, err := f.svc.GetLobbyStatus(ctx, code)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("strangers cannot leave", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 2)
		assert.ErrorIs(t, f.svc.LeaveLobby(ctx, code, "stranger"), ErrUnauthorized)
	})

	t.Run("turn holder leaving passes the turn on", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 4)
		l := f.lobby(t, code)
		order := l.TurnOrderIDs()
		holder := *l.CurrentTurnPlayerID
		require.Equal(t, order[0], holder)

		var holderSession string
		for _, p := range f.players(t, code) {
			if p.ID == holder {
				holderSession = p.SessionID
			}
		}
		require.NoError(t, f.svc.LeaveLobby(ctx, code, holderSession))

		l = f.lobby(t, code)
		assert.Equal(t, order[1:], l.TurnOrderIDs())
		require.NotNil(t, l.CurrentTurnPlayerID)
		assert.Equal(t, order[1], *l.CurrentTurnPlayerID)
		assert.Equal(t, 0, l.CurrentTurnIndex)
		assertTurnInvariant(t, l, f.players(t, code))
		assert.Len(t, f.rec.Named(events.TurnAdvanced), 1)
	})

	t.Run("last slot holder leaving wraps to a new round", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 3)
		l := f.lobby(t, code)
		order := l.TurnOrderIDs()
		// move the turn to the last slot
		last := order[len(order)-1]
		require.NoError(t, f.db.Model(l).Updates(map[string]any{
			"current_turn_index":     len(order) - 1,
			"current_turn_player_id": last,
		}).Error)

		var lastSession string
		for _, p := range f.players(t, code) {
			if p.ID == last {
				lastSession = p.SessionID
			}
		}
		require.NoError(t, f.svc.LeaveLobby(ctx, code, lastSession))

		l = f.lobby(t, code)
		assert.Equal(t, order[0], *l.CurrentTurnPlayerID)
		assert.Equal(t, 2, l.CurrentRound)
		assertTurnInvariant(t, l, f.players(t, code))
	})

	t.Run("other players leaving keeps the holder", func(t *testing.T) {
		f := newFixture(t)
		code := f.startedLobby(t, 4)
		l := f.lobby(t, code)
		order := l.TurnOrderIDs()
		// give the turn to the third slot, then remove the first
		require.NoError(t, f.db.Model(l).Updates(map[string]any{
			"current_turn_index":     2,
			"current_turn_player_id": order[2],
		}).Error)

		var firstSession string
		for _, p := range f.players(t, code) {
			if p.ID == order[0] {
				firstSession = p.SessionID
			}
		}
		require.NoError(t, f.svc.LeaveLobby(ctx, code, firstSession))

		l = f.lobby(t, code)
		assert.Equal(t, order[2], *l.CurrentTurnPlayerID)
		assert.Equal(t, 1, l.CurrentTurnIndex)
		assertTurnInvariant(t, l, f.players(t, code))
		assert.Empty(t, f.rec.Named(events.TurnAdvanced))
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.newLobby(t, 2)
	f.rec.Reset()

	patch := SettingsPatch{ImpostorCount: intPtr(2), DiscussionTime: intPtr(120), WordDifficulty: intPtr(5)}
	updated, err := f.svc.UpdateSettings(ctx, code, session(0), patch)
	require.NoError(t, err)

	stored := f.lobby(t, code).LobbySettings()
	assert.Equal(t, updated, stored)
	assert.Equal(t, 2, stored.ImpostorCount)
	assert.Equal(t, 120, stored.DiscussionTime)
	assert.Equal(t, 5, stored.WordDifficulty)
	assert.Equal(t, 20, stored.MaxPlayers, "untouched key keeps its value")
	assert.Len(t, f.rec.Named(events.SettingsUpdated), 1)

	_, err = f.svc.UpdateSettings(ctx, code, session(1), patch)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.UpdateSettings(ctx, code, session(0), SettingsPatch{MaxPlayers: intPtr(1)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, stored, f.lobby(t, code).LobbySettings())
}

func TestUpdateSettingsKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seat, err := f.svc.CreateLobby(ctx, session(0), CreateLobbyInput{PlayerName: "host"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateSettings(ctx, seat.Code, session(0), SettingsPatch{ImpostorCount: intPtr(2)})
	require.NoError(t, err)

	want := postgres.DefaultSettings()
	want.ImpostorCount = 2
	assert.Equal(t, want, updated)
	assert.Equal(t, want, f.lobby(t, seat.Code).LobbySettings())
}

func TestGetLobbyStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.newLobby(t, 3)

	status, err := f.svc.GetLobbyStatus(ctx, strings.ToLower(code))
	require.NoError(t, err)
	assert.Equal(t, &LobbyStatus{Code: code, Status: "waiting", PlayerCount: 3}, status)

	_, err = f.svc.GetLobbyStatus(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.newLobby(t, 2)

	seat, err := f.svc.Seat(ctx, code, session(1))
	require.NoError(t, err)
	assert.Equal(t, f.players(t, code)[1].ID, seat.PlayerID)
	assert.False(t, seat.IsHost)

	_, err = f.svc.Seat(ctx, code, "stranger")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
