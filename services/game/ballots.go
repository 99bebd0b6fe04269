package game

import (
	"context"
	"errors"

	game_constants "Impostor/constants/game"
	"Impostor/services/events"
)

// BallotResult reports a vote-now or reroll ballot after it was counted.
type BallotResult struct {
	Count     int  `json:"count"`
	Threshold int  `json:"threshold"`
	Activated bool `json:"activated"`
	Progress  int  `json:"progress"`
	// Rerolled is only meaningful for reroll ballots.
	Rerolled bool `json:"rerolled"`
}

// voteThreshold is ceil(active * 70%).
func voteThreshold(active int) int {
	return (active*game_constants.VoteThresholdPercent + 99) / 100
}

func ballotProgress(count, threshold int) int {
	if threshold <= 0 {
		return 100
	}
	return min(100, count*100/threshold)
}

// VoteNow asks to skip the rest of the discussion. Once enough active
// players agree, pending elimination ballots are discarded so the vote
// starts from scratch.
func (s *Service) VoteNow(ctx context.Context, code, session string) (*BallotResult, error) {
	var result *BallotResult
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		voter, err := t.voter(session)
		if err != nil {
			return err
		}
		if err := t.requirePlaying(); err != nil {
			return err
		}

		votes := t.lobby.VoteNowIDs()
		if contains(votes, voter.ID) {
			return conflict("already voted to vote now")
		}
		votes = append(votes, voter.ID)
		t.lobby.SetVoteNowIDs(votes)
		voter.HasVotedVoteNow = true
		if err := t.savePlayer(voter); err != nil {
			return err
		}
		if err := t.saveLobby(); err != nil {
			return err
		}

		threshold := voteThreshold(len(t.active()))
		result = &BallotResult{
			Count:     len(votes),
			Threshold: threshold,
			Activated: len(votes) >= threshold,
			Progress:  ballotProgress(len(votes), threshold),
		}
		if result.Activated {
			if err := s.ledger.ClearEliminationVotes(ctx, t.lobby.ID); err != nil {
				return err
			}
		}

		t.emit(events.VoteNowUpdated, events.BallotPayload{
			Count:     result.Count,
			Threshold: result.Threshold,
			Activated: result.Activated,
			Progress:  result.Progress,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VoteReroll asks for a different word. Impostors may not take part. At
// the threshold a new word is drawn and dealt without touching roles; if
// none is available the ballots stay and word.reroll_failed is emitted.
func (s *Service) VoteReroll(ctx context.Context, code, session string) (*BallotResult, error) {
	var result *BallotResult
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		voter, err := t.voter(session)
		if err != nil {
			return err
		}
		if err := t.requirePlaying(); err != nil {
			return err
		}
		if voter.IsImpostor {
			return unauthorized("impostors cannot vote to reroll")
		}

		votes := t.lobby.RerollIDs()
		if contains(votes, voter.ID) {
			return conflict("already voted to reroll")
		}
		votes = append(votes, voter.ID)
		t.lobby.SetRerollIDs(votes)
		voter.HasVotedReroll = true
		if err := t.savePlayer(voter); err != nil {
			return err
		}

		threshold := voteThreshold(len(t.active()))
		result = &BallotResult{
			Count:     len(votes),
			Threshold: threshold,
			Activated: len(votes) >= threshold,
			Progress:  ballotProgress(len(votes), threshold),
		}
		if result.Activated {
			result.Rerolled, err = s.rerollWord(t)
			if err != nil {
				return err
			}
		}
		if err := t.saveLobby(); err != nil {
			return err
		}

		t.emit(events.RerollUpdated, events.BallotPayload{
			Count:     result.Count,
			Threshold: result.Threshold,
			Activated: result.Activated,
			Progress:  result.Progress,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// rerollWord swaps the round word in place and clears reroll ballots.
func (s *Service) rerollWord(t *lobbyTx) (bool, error) {
	word, err := s.words.SelectWordForGame(t.ctx, t.tx, s.language)
	if errors.Is(err, ErrNoWordAvailable) {
		t.emit(events.WordRerollFailed, events.WordRerollFailedPayload{Reason: "no word available"})
		logLobby(t.lobby).Msg("reroll failed, no word available")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if word.ImpostorWordID == nil {
		return false, errors.New("rerolled word has no impostor pairing")
	}

	t.lobby.WordID = &word.ID
	t.lobby.SetRerollIDs(nil)
	for _, p := range t.players {
		if p.IsImpostor {
			p.WordID = word.ImpostorWordID
		} else {
			p.WordID = &word.ID
		}
		p.HasVotedReroll = false
		if err := t.savePlayer(p); err != nil {
			return false, err
		}
	}

	t.emit(events.WordRerolled, events.WordRerolledPayload{
		WordCategory: word.Category,
		Difficulty:   word.Difficulty,
	})
	logLobby(t.lobby).Msg("word rerolled")
	return true, nil
}

