package game

import (
	"context"

	"Impostor/models/postgres"
	"Impostor/services/events"
)

type TurnInfo struct {
	CurrentTurnPlayerID *uint `json:"current_turn_player_id"`
	CurrentTurnIndex    int   `json:"current_turn_index"`
	CurrentRound        int   `json:"current_round"`
}

func turnInfo(l *postgres.Lobby) *TurnInfo {
	return &TurnInfo{
		CurrentTurnPlayerID: l.CurrentTurnPlayerID,
		CurrentTurnIndex:    l.CurrentTurnIndex,
		CurrentRound:        l.CurrentRound,
	}
}

// NextTurn hands the turn on. Only the host or the current speaker may do it.
func (s *Service) NextTurn(ctx context.Context, code, session string) (*TurnInfo, error) {
	var info *TurnInfo
	err := s.withLobby(ctx, code, func(t *lobbyTx) error {
		caller, err := t.member(session)
		if err != nil {
			return err
		}
		if err := t.requirePlaying(); err != nil {
			return err
		}
		current := t.lobby.CurrentTurnPlayerID
		if !caller.IsHost && (current == nil || *current != caller.ID) {
			return unauthorized("only the host or the current player can end the turn")
		}
		if _, err := s.advanceTurn(t); err != nil {
			return err
		}
		info = turnInfo(t.lobby)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// advanceTurn moves to the next slot of the turn order, bumping the round
// when it wraps to slot 0, then skips eliminated players for at most one
// lap. With nobody left to speak the lobby is left untouched.
func (s *Service) advanceTurn(t *lobbyTx) (bool, error) {
	order := t.lobby.TurnOrderIDs()
	if len(order) == 0 {
		return false, nil
	}
	next := (t.lobby.CurrentTurnIndex + 1) % len(order)
	round := t.lobby.CurrentRound
	if next == 0 {
		round++
	}
	return s.moveTurn(t, order, next, round)
}

// moveTurn points the turn at the first active player at or after start.
func (s *Service) moveTurn(t *lobbyTx, order []uint, start, round int) (bool, error) {
	idx, ok := scanActive(order, start, t.activeSet())
	if !ok {
		return false, nil
	}

	now := s.now()
	l := t.lobby
	l.CurrentTurnIndex = idx
	l.CurrentTurnPlayerID = &order[idx]
	l.TurnStartedAt = &now
	l.CurrentRound = round
	if err := t.saveLobby(); err != nil {
		return false, err
	}

	t.emit(events.TurnAdvanced, events.TurnAdvancedPayload{
		CurrentTurnPlayerID: order[idx],
		CurrentTurnIndex:    idx,
		CurrentRound:        round,
		TurnStartedAt:       now,
	})
	return true, nil
}

func scanActive(order []uint, start int, active map[uint]bool) (int, bool) {
	for i := 0; i < len(order); i++ {
		idx := (start + i) % len(order)
		if active[order[idx]] {
			return idx, true
		}
	}
	return -1, false
}

func (t *lobbyTx) activeSet() map[uint]bool {
	set := make(map[uint]bool, len(t.players))
	for _, p := range t.players {
		if p.Active() {
			set[p.ID] = true
		}
	}
	return set
}

// pruneTurnOrder drops a departing player from the turn order and keeps
// the turn pointer consistent. t.players must no longer contain them.
func (s *Service) pruneTurnOrder(t *lobbyTx, leaverID uint) error {
	l := t.lobby
	order := l.TurnOrderIDs()
	pos := indexOf(order, leaverID)
	if pos < 0 {
		return nil
	}
	order = append(order[:pos:pos], order[pos+1:]...)
	l.SetTurnOrder(order)

	for _, p := range t.players {
		if i := indexOf(order, p.ID); i >= 0 {
			if p.TurnPosition == nil || *p.TurnPosition != i {
				p.TurnPosition = &i
				if err := t.savePlayer(p); err != nil {
					return err
				}
			}
		}
	}

	heldTurn := l.CurrentTurnPlayerID != nil && *l.CurrentTurnPlayerID == leaverID
	if !heldTurn {
		if l.CurrentTurnPlayerID != nil {
			l.CurrentTurnIndex = indexOf(order, *l.CurrentTurnPlayerID)
		}
		return nil
	}

	if len(order) == 0 {
		l.ClearTurn()
		return nil
	}
	// the slot the leaver occupied now holds their successor
	start, round := pos, l.CurrentRound
	if start >= len(order) {
		start = 0
		round++
	}
	moved, err := s.moveTurn(t, order, start, round)
	if err != nil {
		return err
	}
	if !moved {
		l.ClearTurn()
	}
	return nil
}
