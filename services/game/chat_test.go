package game

import (
	"context"
	"fmt"
	"strings"
	"testing"

	game_constants "Impostor/constants/game"
	"Impostor/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.newLobby(t, 3)
	players := f.players(t, code)
	f.rec.Reset()

	msg, err := f.svc.SendMessage(ctx, code, session(0), MessageInput{Content: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "player-0", msg.SenderName)
	assert.False(t, msg.IsDM)

	dm, err := f.svc.SendMessage(ctx, code, session(0), MessageInput{Content: "psst", RecipientID: &players[1].ID})
	require.NoError(t, err)
	assert.True(t, dm.IsDM)

	sent := f.rec.Named(events.MessageSent)
	require.Len(t, sent, 2)
	assert.Empty(t, sent[0].Recipients)
	assert.ElementsMatch(t, []uint{players[0].ID, players[1].ID}, sent[1].Recipients)

	_, err = f.svc.SendMessage(ctx, code, session(0), MessageInput{Content: "me", RecipientID: &players[0].ID})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.SendMessage(ctx, code, session(0), MessageInput{Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.SendMessage(ctx, code, session(0), MessageInput{Content: strings.Repeat("x", 501)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.SendMessage(ctx, code, "stranger", MessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("direct messages are private", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 3)
		players := f.players(t, code)

		_, err := f.svc.SendMessage(ctx, code, session(0), MessageInput{Content: "all"})
		require.NoError(t, err)
		_, err = f.svc.SendMessage(ctx, code, session(0), MessageInput{Content: "secret", RecipientID: &players[1].ID})
		require.NoError(t, err)

		contents := func(who string) []string {
			msgs, err := f.svc.Messages(ctx, code, who)
			require.NoError(t, err)
			out := make([]string, 0, len(msgs))
			for _, m := range msgs {
				out = append(out, m.Content)
			}
			return out
		}
		assert.Equal(t, []string{"all", "secret"}, contents(session(0)))
		assert.Equal(t, []string{"all", "secret"}, contents(session(1)))
		assert.Equal(t, []string{"all"}, contents(session(2)))

		var unread int64
		require.NoError(t, f.db.Table("messages").Where("recipient_id = ? AND is_read = ?", players[1].ID, false).Count(&unread).Error)
		assert.Zero(t, unread)
	})

	t.Run("history is capped and oldest first", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 2)
		total := game_constants.MessageHistoryLimit + 5
		for i := 0; i < total; i++ {
			_, err := f.svc.SendMessage(ctx, code, session(i%2), MessageInput{Content: fmt.Sprintf("m%03d", i)})
			require.NoError(t, err)
		}

		msgs, err := f.svc.Messages(ctx, code, session(0))
		require.NoError(t, err)
		require.Len(t, msgs, game_constants.MessageHistoryLimit)
		assert.Equal(t, "m005", msgs[0].Content)
		assert.Equal(t, fmt.Sprintf("m%03d", total-1), msgs[len(msgs)-1].Content)
		assert.Equal(t, "player-1", msgs[0].SenderName)
	})

	t.Run("leaving removes the player's messages", func(t *testing.T) {
		f := newFixture(t)
		code := f.newLobby(t, 2)
		_, err := f.svc.SendMessage(ctx, code, session(1), MessageInput{Content: "bye"})
		require.NoError(t, err)
		require.NoError(t, f.svc.LeaveLobby(ctx, code, session(1)))

		msgs, err := f.svc.Messages(ctx, code, session(0))
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}
