package game

import (
	"context"
	"errors"

	"Impostor/models/postgres"
	redis_models "Impostor/models/redis"
	"Impostor/services/events"
)

type VoteInput struct {
	// TargetID nil is a skip.
	TargetID *uint `json:"target_id"`
}

// VotePlayer locks in the caller's elimination ballot. The ballot is cast
// under the lobby lock so it cannot land after EndVoting drained the phase.
func (s *Service) VotePlayer(ctx context.Context, code, session string, in VoteInput) error {
	return s.withLobby(ctx, code, func(t *lobbyTx) error {
		if err := t.requirePlaying(); err != nil {
			return err
		}
		voter, err := t.voter(session)
		if err != nil {
			return err
		}
		if in.TargetID != nil {
			target := t.player(*in.TargetID)
			if target == nil || target.IsEliminated {
				return fieldError("target_id", "must be an active player in this lobby")
			}
		}

		created, err := s.ledger.CastEliminationVote(t.ctx, t.lobby.ID, voter.ID, in.TargetID)
		if err != nil {
			return err
		}
		if !created {
			return conflict("already voted")
		}

		t.emitExcept(events.PlayerVoted, events.PlayerVotedPayload{VoterID: voter.ID, Skipped: in.TargetID == nil}, voter.ID)
		return nil
	})
}

// VotingResult is the outcome of EndVoting.
type VotingResult struct {
	Eliminated   *events.EliminatedPlayer `json:"eliminated_player"`
	GameResult   *string                  `json:"game_result"`
	LobbyStatus  string                   `json:"lobby_status"`
	ImpostorWins int                      `json:"impostor_wins"`
	CrewWins     int                      `json:"crew_wins"`
}

// EndVoting tallies the ballots and resolves the phase: nobody is
// eliminated, the game goes on, the impostors win on parity, or the crew
// wins by catching an impostor and a new round is dealt.
func (s *Service) EndVoting(ctx context.Context, code, session string) (*VotingResult, error) {
	var result *VotingResult
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		if _, err := t.host(session, "end the voting"); err != nil {
			return err
		}
		if err := t.requirePlaying(); err != nil {
			return err
		}

		ballots, err := s.ledger.DrainEliminationVotes(ctx, t.lobby.ID)
		if err != nil {
			return err
		}
		if err := s.resetVotePhase(t); err != nil {
			return err
		}

		targetID, ok := tally(ballots, t.activeSet())
		if !ok {
			if _, err := s.advanceTurn(t); err != nil {
				return err
			}
			result = s.votingEnded(t, nil, nil)
			return nil
		}

		eliminated := t.player(targetID)
		eliminated.IsEliminated = true
		if err := t.savePlayer(eliminated); err != nil {
			return err
		}
		out := &events.EliminatedPlayer{
			ID:         eliminated.ID,
			Name:       eliminated.Name,
			IsImpostor: eliminated.IsImpostor,
		}

		impostors, crew := 0, 0
		for _, p := range t.active() {
			if p.IsImpostor {
				impostors++
			} else {
				crew++
			}
		}

		switch {
		case impostors >= crew:
			t.lobby.ImpostorWins++
			if err := s.finish(t, postgres.ImpostorWins); err != nil {
				return err
			}
			r := postgres.ImpostorWins
			result = s.votingEnded(t, out, &r)

		case eliminated.IsImpostor:
			t.lobby.CrewWins++
			if _, err := s.restartRound(t); err != nil {
				if !isRestartBlocked(err) {
					return err
				}
				logLobby(t.lobby).Err(err).Msg("crew won but no new round could be dealt")
				if err := s.finish(t, postgres.CrewWins); err != nil {
					return err
				}
			}
			r := postgres.CrewWins
			result = s.votingEnded(t, out, &r)

		default:
			if _, err := s.advanceTurn(t); err != nil {
				return err
			}
			result = s.votingEnded(t, out, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) votingEnded(t *lobbyTx, eliminated *events.EliminatedPlayer, gameResult *postgres.GameResult) *VotingResult {
	var res *string
	if gameResult != nil {
		r := string(*gameResult)
		res = &r
	}
	result := &VotingResult{
		Eliminated:   eliminated,
		GameResult:   res,
		LobbyStatus:  string(t.lobby.Status),
		ImpostorWins: t.lobby.ImpostorWins,
		CrewWins:     t.lobby.CrewWins,
	}
	t.emit(events.VotingEnded, events.VotingEndedPayload{
		EliminatedPlayer: result.Eliminated,
		GameResult:       result.GameResult,
		LobbyStatus:      result.LobbyStatus,
		ImpostorWins:     result.ImpostorWins,
		CrewWins:         result.CrewWins,
	})
	return result
}

// finish ends the game. Nobody holds the turn in a finished lobby.
func (s *Service) finish(t *lobbyTx, result postgres.GameResult) error {
	t.lobby.Status = postgres.LobbyFinished
	t.lobby.GameResult = &result
	t.lobby.ClearTurn()
	t.finished = true
	logLobby(t.lobby).Str("result", string(result)).Msg("game finished")
	return t.saveLobby()
}

// resetVotePhase clears vote-now and reroll ballots.
func (s *Service) resetVotePhase(t *lobbyTx) error {
	t.lobby.SetVoteNowIDs(nil)
	t.lobby.SetRerollIDs(nil)
	for _, p := range t.players {
		if p.HasVotedVoteNow || p.HasVotedReroll {
			p.HasVotedVoteNow = false
			p.HasVotedReroll = false
			if err := t.savePlayer(p); err != nil {
				return err
			}
		}
	}
	return t.saveLobby()
}

// tally returns the most voted eligible target. Ties go to the lowest
// player id; skips and ballots for ineligible targets are ignored.
func tally(ballots []redis_models.EliminationVote, eligible map[uint]bool) (uint, bool) {
	counts := make(map[uint]int)
	for _, b := range ballots {
		if b.Skip() || !eligible[b.VoterID] || !eligible[*b.TargetID] {
			continue
		}
		counts[*b.TargetID]++
	}

	var best uint
	bestCount := 0
	for id, c := range counts {
		if c > bestCount || (c == bestCount && id < best) {
			best, bestCount = id, c
		}
	}
	return best, bestCount > 0
}

func isRestartBlocked(err error) bool {
	return errors.Is(err, ErrNoWordAvailable) || errors.Is(err, ErrConflict)
}

func findPlayer(players []*postgres.Player, id uint) *postgres.Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
