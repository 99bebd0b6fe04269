package game

import (
	"context"
	"fmt"
	"testing"
	"time"

	"Impostor/models/postgres"
	"Impostor/services/events"
	svcredis "Impostor/services/redis"
	"Impostor/services/words"
	"Impostor/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc    *Service
	db     *gorm.DB
	rec    *events.Recorder
	mr     *miniredis.Miniredis
	ledger *svcredis.RedisClient
}

type fixtureOpts struct {
	wordPairs   int
	cooldown    int
	restartWait time.Duration
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, fixtureOpts{wordPairs: 20, cooldown: 100})
}

func newFixtureWith(t *testing.T, o fixtureOpts) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	if o.wordPairs > 0 {
		testutil.SeedWordPairs(t, db, "en", o.wordPairs)
	}
	mr, client := testutil.NewRedis(t)
	ledger := svcredis.Wrap(client, 10*time.Minute)
	rec := &events.Recorder{}

	svc := NewService(db, words.NewSelector(o.cooldown), ledger, rec, Options{
		Language:         "en",
		AutoRestartDelay: o.restartWait,
	})
	t.Cleanup(svc.Close)

	return &fixture{svc: svc, db: db, rec: rec, mr: mr, ledger: ledger}
}

func session(i int) string { return fmt.Sprintf("session-%d", i) }

// newLobby creates a lobby hosted by session(0) with n players in total.
func (f *fixture) newLobby(t *testing.T, n int) string {
	t.Helper()
	ctx := context.Background()
	seat, err := f.svc.CreateLobby(ctx, session(0), CreateLobbyInput{
		PlayerName: "player-0",
		Settings:   &SettingsPatch{MaxPlayers: intPtr(20)},
	})
	require.NoError(t, err)
	for i := 1; i < n; i++ {
		_, err := f.svc.JoinLobby(ctx, seat.Code, session(i), JoinLobbyInput{PlayerName: fmt.Sprintf("player-%d", i)})
		require.NoError(t, err)
	}
	return seat.Code
}

// startedLobby is newLobby plus StartGame, with the recorder cleared.
func (f *fixture) startedLobby(t *testing.T, n int) string {
	t.Helper()
	code := f.newLobby(t, n)
	_, err := f.svc.StartGame(context.Background(), code, session(0))
	require.NoError(t, err)
	f.rec.Reset()
	return code
}

func (f *fixture) lobby(t *testing.T, code string) *postgres.Lobby {
	t.Helper()
	var l postgres.Lobby
	require.NoError(t, f.db.Where("code = ?", code).First(&l).Error)
	return &l
}

// players returns the lobby's players ordered by id, which is join order,
// so players(...)[i] belongs to session(i) as long as nobody left.
func (f *fixture) players(t *testing.T, code string) []*postgres.Player {
	t.Helper()
	l := f.lobby(t, code)
	var ps []*postgres.Player
	require.NoError(t, f.db.Where("lobby_id = ?", l.ID).Order("id").Find(&ps).Error)
	return ps
}

// setImpostors overrides the random draw so tests can reason about roles.
func (f *fixture) setImpostors(t *testing.T, code string, impostors ...uint) {
	t.Helper()
	l := f.lobby(t, code)
	require.NotNil(t, l.WordID)
	var word postgres.Word
	require.NoError(t, f.db.First(&word, *l.WordID).Error)

	for _, p := range f.players(t, code) {
		isImpostor := contains(impostors, p.ID)
		wordID := word.ID
		if isImpostor {
			wordID = *word.ImpostorWordID
		}
		require.NoError(t, f.db.Model(&postgres.Player{}).Where("id = ?", p.ID).
			Updates(map[string]any{"is_impostor": isImpostor, "word_id": wordID}).Error)
	}
}

func (f *fixture) eliminate(t *testing.T, ids ...uint) {
	t.Helper()
	require.NoError(t, f.db.Model(&postgres.Player{}).Where("id IN ?", ids).Update("is_eliminated", true).Error)
}

func (f *fixture) vote(t *testing.T, code string, voter int, target *uint) {
	t.Helper()
	require.NoError(t, f.svc.VotePlayer(context.Background(), code, session(voter), VoteInput{TargetID: target}))
}

// assertTurnInvariant checks that the turn pointer names an active player
// sitting at current_turn_index.
func assertTurnInvariant(t *testing.T, l *postgres.Lobby, players []*postgres.Player) {
	t.Helper()
	if l.CurrentTurnPlayerID == nil {
		return
	}
	order := l.TurnOrderIDs()
	require.True(t, l.CurrentTurnIndex >= 0 && l.CurrentTurnIndex < len(order), "index %d out of %v", l.CurrentTurnIndex, order)
	assert.Equal(t, order[l.CurrentTurnIndex], *l.CurrentTurnPlayerID)
	holder := findPlayer(players, *l.CurrentTurnPlayerID)
	require.NotNil(t, holder, "turn holder %d is not in the lobby", *l.CurrentTurnPlayerID)
	assert.False(t, holder.IsEliminated, "turn holder %d is eliminated", holder.ID)
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }
