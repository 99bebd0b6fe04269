package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Impostor/models/postgres"

	"gorm.io/gorm"
)

type PlayerView struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	IsEliminated bool   `json:"is_eliminated"`
	TurnPosition *int   `json:"turn_position"`
}

type BallotState struct {
	Count     int  `json:"count"`
	Threshold int  `json:"threshold"`
	Progress  int  `json:"progress"`
	HasVoted  bool `json:"has_voted"`
}

// GameState is what one player is allowed to see of their lobby.
type GameState struct {
	Code     string            `json:"code"`
	Name     *string           `json:"name"`
	Status   string            `json:"status"`
	Settings postgres.Settings `json:"settings"`

	PlayerID     uint    `json:"player_id"`
	IsHost       bool    `json:"is_host"`
	IsImpostor   bool    `json:"is_impostor"`
	IsEliminated bool    `json:"is_eliminated"`
	Word         *string `json:"word"`
	WordCategory *string `json:"word_category"`
	Difficulty   *int    `json:"difficulty"`

	Players             []PlayerView `json:"players"`
	TurnOrder           []uint       `json:"turn_order"`
	CurrentTurnIndex    int          `json:"current_turn_index"`
	CurrentTurnPlayerID *uint        `json:"current_turn_player_id"`
	TurnStartedAt       *time.Time   `json:"turn_started_at"`
	CurrentRound        int          `json:"current_round"`
	ImpostorWins        int          `json:"impostor_wins"`
	CrewWins            int          `json:"crew_wins"`
	GameResult          *string      `json:"game_result"`

	VoteNow             BallotState `json:"vote_now"`
	Reroll              BallotState `json:"reroll"`
	HasVotedElimination bool        `json:"elimination_vote_has_voted"`

	// Impostors is only revealed once the game is finished.
	Impostors []uint `json:"impostors,omitempty"`
}

// GameState returns the caller's view of the lobby.
func (s *Service) GameState(ctx context.Context, code, session string) (*GameState, error) {
	lobby, players, err := s.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	me := findSession(players, session)
	if me == nil {
		return nil, unauthorized("not a member of lobby %s", lobby.Code)
	}

	active := 0
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		if p.Active() {
			active++
		}
		views = append(views, PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			IsHost:       p.IsHost,
			IsEliminated: p.IsEliminated,
			TurnPosition: p.TurnPosition,
		})
	}
	threshold := voteThreshold(active)
	voteNow, reroll := lobby.VoteNowIDs(), lobby.RerollIDs()

	state := &GameState{
		Code:                lobby.Code,
		Name:                lobby.Name,
		Status:              string(lobby.Status),
		Settings:            lobby.LobbySettings(),
		PlayerID:            me.ID,
		IsHost:              me.IsHost,
		IsImpostor:          me.IsImpostor,
		IsEliminated:        me.IsEliminated,
		Players:             views,
		TurnOrder:           lobby.TurnOrderIDs(),
		CurrentTurnIndex:    lobby.CurrentTurnIndex,
		CurrentTurnPlayerID: lobby.CurrentTurnPlayerID,
		TurnStartedAt:       lobby.TurnStartedAt,
		CurrentRound:        lobby.CurrentRound,
		ImpostorWins:        lobby.ImpostorWins,
		CrewWins:            lobby.CrewWins,
		VoteNow: BallotState{
			Count:     len(voteNow),
			Threshold: threshold,
			Progress:  ballotProgress(len(voteNow), threshold),
			HasVoted:  contains(voteNow, me.ID),
		},
		Reroll: BallotState{
			Count:     len(reroll),
			Threshold: threshold,
			Progress:  ballotProgress(len(reroll), threshold),
			HasVoted:  contains(reroll, me.ID),
		},
	}
	if lobby.GameResult != nil {
		r := string(*lobby.GameResult)
		state.GameResult = &r
	}

	if lobby.Status != postgres.LobbyWaiting && me.WordID != nil {
		var word postgres.Word
		err := s.db.WithContext(ctx).First(&word, *me.WordID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load word: %w", err)
		}
		if err == nil {
			state.Word = &word.Text
			state.WordCategory = &word.Category
			state.Difficulty = &word.Difficulty
		}
	}

	if lobby.Status == postgres.LobbyPlaying {
		voted, err := s.ledger.HasEliminationVote(ctx, lobby.ID, me.ID)
		if err != nil {
			return nil, err
		}
		state.HasVotedElimination = voted
	}

	if lobby.Status == postgres.LobbyFinished {
		for _, p := range players {
			if p.IsImpostor {
				state.Impostors = append(state.Impostors, p.ID)
			}
		}
	}
	return state, nil
}
