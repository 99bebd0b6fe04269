package game

import (
	"context"
	"fmt"
	"strings"

	"Impostor/models/postgres"
	"Impostor/services/events"

	"gorm.io/gorm"
)

// SettingsPatch is a partial settings update; nil fields keep their value.
type SettingsPatch struct {
	ImpostorCount  *int `json:"impostor_count" validate:"omitempty,min=1,max=5"`
	MaxPlayers     *int `json:"max_players" validate:"omitempty,min=2,max=20"`
	DiscussionTime *int `json:"discussion_time" validate:"omitempty,min=15,max=300"`
	VotingTime     *int `json:"voting_time" validate:"omitempty,min=15,max=180"`
	WordDifficulty *int `json:"word_difficulty" validate:"omitempty,min=1,max=5"`
}

func (p SettingsPatch) apply(s postgres.Settings) postgres.Settings {
	if p.ImpostorCount != nil {
		s.ImpostorCount = *p.ImpostorCount
	}
	if p.MaxPlayers != nil {
		s.MaxPlayers = *p.MaxPlayers
	}
	if p.DiscussionTime != nil {
		s.DiscussionTime = *p.DiscussionTime
	}
	if p.VotingTime != nil {
		s.VotingTime = *p.VotingTime
	}
	if p.WordDifficulty != nil {
		s.WordDifficulty = *p.WordDifficulty
	}
	return s
}

type CreateLobbyInput struct {
	PlayerName string         `json:"player_name" validate:"required,max=30"`
	LobbyName  string         `json:"lobby_name" validate:"max=50"`
	Settings   *SettingsPatch `json:"settings"`
}

type JoinLobbyInput struct {
	PlayerName string `json:"player_name" validate:"required,max=30"`
}

// Membership is the caller's seat in a lobby.
type Membership struct {
	Code     string `json:"code"`
	LobbyID  uint   `json:"lobby_id"`
	PlayerID uint   `json:"player_id"`
	IsHost   bool   `json:"is_host"`
	Status   string `json:"status"`
}

func membership(l *postgres.Lobby, p *postgres.Player) *Membership {
	return &Membership{
		Code:     l.Code,
		LobbyID:  l.ID,
		PlayerID: p.ID,
		IsHost:   p.IsHost,
		Status:   string(l.Status),
	}
}

// CreateLobby opens a waiting lobby with the caller as host.
func (s *Service) CreateLobby(ctx context.Context, session string, in CreateLobbyInput) (*Membership, error) {
	in.PlayerName = strings.TrimSpace(in.PlayerName)
	in.LobbyName = strings.TrimSpace(in.LobbyName)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if session == "" {
		return nil, unauthorized("missing session")
	}

	settings := postgres.DefaultSettings()
	if in.Settings != nil {
		if err := validateInput(in.Settings); err != nil {
			return nil, err
		}
		settings = in.Settings.apply(settings)
	}

	lobby := postgres.Lobby{Status: postgres.LobbyWaiting}
	if in.LobbyName != "" {
		lobby.Name = &in.LobbyName
	}
	lobby.SetSettings(settings)
	lobby.SetTurnOrder(nil)
	lobby.SetVoteNowIDs(nil)
	lobby.SetRerollIDs(nil)

	now := s.now()
	host := postgres.Player{
		SessionID:    session,
		Name:         in.PlayerName,
		IsHost:       true,
		LastActiveAt: &now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lobby).Error; err != nil {
			return fmt.Errorf("create lobby: %w", err)
		}
		host.LobbyID = lobby.ID
		if err := tx.Create(&host).Error; err != nil {
			return fmt.Errorf("create host: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logLobby(&lobby).Uint("host", host.ID).Msg("lobby created")
	return membership(&lobby, &host), nil
}

// JoinLobby seats the caller in a waiting lobby. A session that already
// holds a seat gets it back.
func (s *Service) JoinLobby(ctx context.Context, code, session string, in JoinLobbyInput) (*Membership, error) {
	in.PlayerName = strings.TrimSpace(in.PlayerName)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if session == "" {
		return nil, unauthorized("missing session")
	}

	var result *Membership
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		if t.lobby.Status == postgres.LobbyFinished {
			return notFound("lobby %s is closed", t.lobby.Code)
		}
		now := s.now()
		if existing := findSession(t.players, session); existing != nil {
			existing.LastActiveAt = &now
			result = membership(t.lobby, existing)
			return t.savePlayer(existing)
		}
		if t.lobby.Status == postgres.LobbyPlaying {
			return conflict("game already in progress")
		}
		if len(t.players) >= t.lobby.LobbySettings().MaxPlayers {
			return conflict("lobby is full")
		}

		player := postgres.Player{
			LobbyID:      t.lobby.ID,
			SessionID:    session,
			Name:         in.PlayerName,
			LastActiveAt: &now,
		}
		if err := t.tx.Create(&player).Error; err != nil {
			return fmt.Errorf("create player: %w", err)
		}
		t.players = append(t.players, &player)

		t.emitExcept(events.PlayerJoined, events.PlayerJoinedPayload{
			Player:      publicPlayer(&player),
			PlayerCount: len(t.players),
		}, player.ID)
		result = membership(t.lobby, &player)
		logLobby(t.lobby).Uint("player", player.ID).Msg("player joined")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LeaveLobby removes the caller. The host seat passes to the oldest
// remaining player; an empty lobby is deleted.
func (s *Service) LeaveLobby(ctx context.Context, code, session string) error {
	return s.withLobby(ctx, code, func(t *lobbyTx) error {
		leaver, err := t.member(session)
		if err != nil {
			return err
		}

		err = t.tx.Where("sender_id = ? OR recipient_id = ?", leaver.ID, leaver.ID).Delete(&postgres.Message{}).Error
		if err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := t.tx.Delete(&postgres.Player{}, leaver.ID).Error; err != nil {
			return fmt.Errorf("delete player: %w", err)
		}

		remaining := make([]*postgres.Player, 0, len(t.players))
		for _, p := range t.players {
			if p.ID != leaver.ID {
				remaining = append(remaining, p)
			}
		}
		t.players = remaining

		if len(remaining) == 0 {
			if err := t.tx.Where("lobby_id = ?", t.lobby.ID).Delete(&postgres.Message{}).Error; err != nil {
				return fmt.Errorf("delete messages: %w", err)
			}
			if err := t.tx.Delete(t.lobby).Error; err != nil {
				return fmt.Errorf("delete lobby: %w", err)
			}
			t.deleted = true
			if err := s.ledger.ClearEliminationVotes(t.ctx, t.lobby.ID); err != nil {
				logLobby(t.lobby).Err(err).Msg("clearing ballots of deleted lobby")
			}
			logLobby(t.lobby).Msg("lobby deleted")
			return nil
		}

		var newHost *uint
		if leaver.IsHost {
			// players are ordered by id, so the first one is the oldest seat
			promoted := remaining[0]
			promoted.IsHost = true
			if err := t.savePlayer(promoted); err != nil {
				return err
			}
			newHost = &promoted.ID
		}

		t.lobby.SetVoteNowIDs(without(t.lobby.VoteNowIDs(), leaver.ID))
		t.lobby.SetRerollIDs(without(t.lobby.RerollIDs(), leaver.ID))
		if t.lobby.Status == postgres.LobbyPlaying {
			if err := s.pruneTurnOrder(t, leaver.ID); err != nil {
				return err
			}
		}
		if err := t.saveLobby(); err != nil {
			return err
		}

		t.emit(events.PlayerLeft, events.PlayerLeftPayload{
			PlayerID:    leaver.ID,
			NewHostID:   newHost,
			PlayerCount: len(remaining),
		})
		logLobby(t.lobby).Uint("player", leaver.ID).Msg("player left")
		return nil
	})
}

// UpdateSettings merges a validated patch into the lobby settings.
func (s *Service) UpdateSettings(ctx context.Context, code, session string, patch SettingsPatch) (postgres.Settings, error) {
	if err := validateInput(patch); err != nil {
		return postgres.Settings{}, err
	}

	var updated postgres.Settings
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		if _, err := t.host(session, "change settings"); err != nil {
			return err
		}
		updated = patch.apply(t.lobby.LobbySettings())
		t.lobby.SetSettings(updated)
		if err := t.saveLobby(); err != nil {
			return err
		}
		t.emit(events.SettingsUpdated, events.SettingsUpdatedPayload{Settings: updated})
		return nil
	})
	return updated, err
}

type LobbyStatus struct {
	Code        string `json:"code"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
}

// GetLobbyStatus is the public probe used by join pages.
func (s *Service) GetLobbyStatus(ctx context.Context, code string) (*LobbyStatus, error) {
	lobby, players, err := s.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	return &LobbyStatus{
		Code:        lobby.Code,
		Status:      string(lobby.Status),
		PlayerCount: len(players),
	}, nil
}

func without(ids []uint, id uint) []uint {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func indexOf(ids []uint, id uint) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Seat returns the caller's membership without changing anything.
func (s *Service) Seat(ctx context.Context, code, session string) (*Membership, error) {
	lobby, players, err := s.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	me := findSession(players, session)
	if me == nil {
		return nil, unauthorized("not a member of lobby %s", lobby.Code)
	}
	return membership(lobby, me), nil
}
