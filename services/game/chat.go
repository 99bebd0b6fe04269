package game

import (
	"context"
	"fmt"
	"strings"

	game_constants "Impostor/constants/game"
	"Impostor/models/postgres"
	"Impostor/services/events"
)

type MessageInput struct {
	Content     string `json:"content" validate:"required,max=500"`
	RecipientID *uint  `json:"recipient_id"`
}

func messageView(m *postgres.Message, senderName string) events.MessagePayload {
	return events.MessagePayload{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderName:  senderName,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		IsDM:        m.IsDM,
		CreatedAt:   m.CreatedAt,
	}
}

// SendMessage posts to the lobby chat, or privately when a recipient is set.
func (s *Service) SendMessage(ctx context.Context, code, session string, in MessageInput) (*events.MessagePayload, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	lobby, players, err := s.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	sender := findSession(players, session)
	if sender == nil {
		return nil, unauthorized("not a member of lobby %s", lobby.Code)
	}
	if in.RecipientID != nil {
		if *in.RecipientID == sender.ID || findPlayer(players, *in.RecipientID) == nil {
			return nil, fieldError("recipient_id", "must be another player in this lobby")
		}
	}

	msg := postgres.Message{
		LobbyID:     lobby.ID,
		SenderID:    sender.ID,
		RecipientID: in.RecipientID,
		Content:     in.Content,
		IsDM:        in.RecipientID != nil,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	view := messageView(&msg, sender.Name)
	ev := events.Event{Name: events.MessageSent, Payload: view}
	if msg.IsDM {
		ev.Recipients = []uint{sender.ID, *msg.RecipientID}
	}
	s.publisher.Publish(lobby.Code, ev)
	return &view, nil
}

// Messages returns the latest public messages and the caller's direct
// messages, oldest first, and marks the DMs addressed to the caller read.
func (s *Service) Messages(ctx context.Context, code, session string) ([]events.MessagePayload, error) {
	lobby, players, err := s.snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	me := findSession(players, session)
	if me == nil {
		return nil, unauthorized("not a member of lobby %s", lobby.Code)
	}

	db := s.db.WithContext(ctx)
	var msgs []postgres.Message
	err = db.Preload("Sender").
		Where("lobby_id = ?", lobby.ID).
		Where("is_dm = ? OR sender_id = ? OR recipient_id = ?", false, me.ID, me.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(game_constants.MessageHistoryLimit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	err = db.Model(&postgres.Message{}).
		Where("lobby_id = ? AND recipient_id = ? AND is_read = ?", lobby.ID, me.ID, false).
		Update("is_read", true).Error
	if err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}

	out := make([]events.MessagePayload, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		name := ""
		if msgs[i].Sender != nil {
			name = msgs[i].Sender.Name
		}
		out = append(out, messageView(&msgs[i], name))
	}
	return out, nil
}
