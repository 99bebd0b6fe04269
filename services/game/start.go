package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	game_constants "Impostor/constants/game"
	"Impostor/models/postgres"
	"Impostor/services/events"

	"github.com/rs/zerolog/log"
)

// RoundSummary describes a freshly dealt round without revealing words.
type RoundSummary struct {
	Status        string `json:"status"`
	CurrentRound  int    `json:"current_round"`
	WordCategory  string `json:"word_category"`
	Difficulty    int    `json:"difficulty"`
	ImpostorCount int    `json:"impostor_count"`
}

// StartGame deals the first round of a waiting lobby.
func (s *Service) StartGame(ctx context.Context, code, session string) (*RoundSummary, error) {
	var summary *RoundSummary
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		if _, err := t.host(session, "start the game"); err != nil {
			return err
		}
		if t.lobby.Status != postgres.LobbyWaiting {
			return conflict("game already started")
		}
		if len(t.players) < game_constants.MinPlayersToStart {
			return conflict("need at least %d players", game_constants.MinPlayersToStart)
		}

		word, err := s.words.SelectWordForGame(ctx, t.tx, s.language)
		if err != nil {
			return err
		}
		summary, err = s.dealRound(t, word, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RestartGame is the host's manual restart of a finished lobby.
func (s *Service) RestartGame(ctx context.Context, code, session string) (*RoundSummary, error) {
	var summary *RoundSummary
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		if _, err := t.host(session, "restart the game"); err != nil {
			return err
		}
		if t.lobby.Status != postgres.LobbyFinished {
			return conflict("game is not finished")
		}
		var err error
		summary, err = s.restartRound(t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RestartFinished restarts a lobby that is still finished. It is what the
// auto-restart timer runs; a lobby restarted or deleted in the meantime is
// left alone.
func (s *Service) RestartFinished(ctx context.Context, lobbyID uint) error {
	err := s.withLobbyID(ctx, lobbyID, func(t *lobbyTx) error {
		if t.lobby.Status != postgres.LobbyFinished {
			return nil
		}
		_, err := s.restartRound(t)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		log.Debug().Uint("lobby_id", lobbyID).Msg("auto-restart skipped, lobby is gone")
		return nil
	}
	return err
}

// restartRound deals a new round to the players already seated.
func (s *Service) restartRound(t *lobbyTx) (*RoundSummary, error) {
	if len(t.players) < game_constants.MinPlayersToStart {
		return nil, conflict("need at least %d players", game_constants.MinPlayersToStart)
	}
	word, err := s.words.SelectWordForGame(t.ctx, t.tx, s.language)
	if err != nil {
		return nil, err
	}
	return s.dealRound(t, word, true)
}

// dealRound shuffles the turn order, draws impostors and hands out words.
// Players on a streak of MaxImpostorStreak sit out the draw unless nobody
// else is eligible. A restart keeps counting the streak of repeat
// impostors; a fresh start resets it.
func (s *Service) dealRound(t *lobbyTx, word *postgres.Word, restart bool) (*RoundSummary, error) {
	if word.ImpostorWordID == nil {
		return nil, fmt.Errorf("word %d has no impostor pairing", word.ID)
	}

	order := make([]uint, len(t.players))
	for i, p := range t.players {
		order[i] = p.ID
	}
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	impostors := drawImpostors(t.players, t.lobby.LobbySettings().ImpostorCount)

	for _, p := range t.players {
		wasImpostor := p.IsImpostor
		p.IsImpostor = impostors[p.ID]
		switch {
		case !p.IsImpostor:
			p.ImpostorStreak = 0
			p.WordID = &word.ID
		case restart && wasImpostor:
			p.ImpostorStreak++
			p.WordID = word.ImpostorWordID
		default:
			p.ImpostorStreak = 1
			p.WordID = word.ImpostorWordID
		}
		pos := indexOf(order, p.ID)
		p.TurnPosition = &pos
		p.IsEliminated = false
		p.HasVotedVoteNow = false
		p.HasVotedReroll = false
		if err := t.savePlayer(p); err != nil {
			return nil, err
		}
	}

	now := s.now()
	l := t.lobby
	l.Status = postgres.LobbyPlaying
	l.GameResult = nil
	l.WordID = &word.ID
	l.SetTurnOrder(order)
	l.CurrentTurnIndex = 0
	l.CurrentTurnPlayerID = &order[0]
	l.TurnStartedAt = &now
	l.SetVoteNowIDs(nil)
	l.SetRerollIDs(nil)
	if restart {
		l.CurrentRound++
	} else {
		l.CurrentRound = 1
	}
	if err := t.saveLobby(); err != nil {
		return nil, err
	}
	if err := s.ledger.ClearEliminationVotes(t.ctx, l.ID); err != nil {
		return nil, err
	}

	summary := &RoundSummary{
		Status:        string(l.Status),
		CurrentRound:  l.CurrentRound,
		WordCategory:  word.Category,
		Difficulty:    word.Difficulty,
		ImpostorCount: len(impostors),
	}
	t.emit(events.GameStarted, events.GameStartedPayload{
		LobbyStatus:  summary.Status,
		WordCategory: summary.WordCategory,
		Difficulty:   summary.Difficulty,
		CurrentRound: summary.CurrentRound,
	})
	logLobby(l).Int("round", l.CurrentRound).Int("impostors", len(impostors)).Bool("restart", restart).Msg("round dealt")
	return summary, nil
}

// drawImpostors picks min(count, pool) impostors at random from the pool
// of players below the streak cap, or from everyone if that pool is empty.
func drawImpostors(players []*postgres.Player, count int) map[uint]bool {
	pool := make([]uint, 0, len(players))
	for _, p := range players {
		if p.ImpostorStreak < game_constants.MaxImpostorStreak {
			pool = append(pool, p.ID)
		}
	}
	if len(pool) == 0 {
		for _, p := range players {
			pool = append(pool, p.ID)
		}
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	count = min(count, len(pool))

	chosen := make(map[uint]bool, count)
	for _, id := range pool[:count] {
		chosen[id] = true
	}
	return chosen
}
