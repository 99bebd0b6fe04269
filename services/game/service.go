package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	game_constants "Impostor/constants/game"
	"Impostor/models/postgres"
	redis_models "Impostor/models/redis"
	"Impostor/services/events"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WordSelector draws the secret word of a round.
type WordSelector interface {
	SelectWordForGame(ctx context.Context, db *gorm.DB, language string) (*postgres.Word, error)
}

// VoteLedger stores elimination ballots outside the lobby row.
type VoteLedger interface {
	CastEliminationVote(ctx context.Context, lobbyID, voterID uint, target *uint) (bool, error)
	HasEliminationVote(ctx context.Context, lobbyID, voterID uint) (bool, error)
	DrainEliminationVotes(ctx context.Context, lobbyID uint) ([]redis_models.EliminationVote, error)
	ClearEliminationVotes(ctx context.Context, lobbyID uint) error
}

type Options struct {
	Language string
	// AutoRestartDelay restarts finished lobbies after the delay; 0 disables it.
	AutoRestartDelay time.Duration
	Now              func() time.Time
}

// Service is the game-state machine. Every mutating call runs in one
// database transaction holding the lobby row lock, and events are
// published only once that transaction has committed.
type Service struct {
	db        *gorm.DB
	words     WordSelector
	ledger    VoteLedger
	publisher events.Publisher
	language  string
	now       func() time.Time
	restarts  *AutoRestarter
}

func NewService(db *gorm.DB, words WordSelector, ledger VoteLedger, publisher events.Publisher, opts Options) *Service {
	s := &Service{
		db:        db,
		words:     words,
		ledger:    ledger,
		publisher: publisher,
		language:  opts.Language,
		now:       opts.Now,
	}
	if s.language == "" {
		s.language = game_constants.DefaultLanguage
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.AutoRestartDelay > 0 {
		s.restarts = NewAutoRestarter(opts.AutoRestartDelay, s.RestartFinished)
	}
	return s
}

// Close stops pending auto-restarts.
func (s *Service) Close() {
	if s.restarts != nil {
		s.restarts.Stop()
	}
}

// lobbyTx is the state of one locked lobby inside a transaction.
type lobbyTx struct {
	ctx     context.Context
	tx      *gorm.DB
	lobby   *postgres.Lobby
	players []*postgres.Player
	outbox  []events.Event

	finished bool
	deleted  bool
}

func (t *lobbyTx) emit(name string, payload any) {
	t.outbox = append(t.outbox, events.Event{Name: name, Payload: payload})
}

func (t *lobbyTx) emitExcept(name string, payload any, except uint) {
	t.outbox = append(t.outbox, events.Event{Name: name, Payload: payload, Except: except})
}

func (t *lobbyTx) player(id uint) *postgres.Player {
	for _, p := range t.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (t *lobbyTx) member(session string) (*postgres.Player, error) {
	for _, p := range t.players {
		if p.SessionID == session {
			return p, nil
		}
	}
	return nil, unauthorized("not a member of lobby %s", t.lobby.Code)
}

func (t *lobbyTx) host(session, action string) (*postgres.Player, error) {
	p, err := t.member(session)
	if err != nil {
		return nil, err
	}
	if !p.IsHost {
		return nil, unauthorized("only the host can %s", action)
	}
	return p, nil
}

// voter returns the caller when they may still cast ballots.
func (t *lobbyTx) voter(session string) (*postgres.Player, error) {
	p, err := t.member(session)
	if err != nil {
		return nil, err
	}
	if p.IsEliminated {
		return nil, unauthorized("eliminated players cannot vote")
	}
	return p, nil
}

func (t *lobbyTx) requirePlaying() error {
	if t.lobby.Status != postgres.LobbyPlaying {
		return conflict("lobby %s is %s, not playing", t.lobby.Code, t.lobby.Status)
	}
	return nil
}

func (t *lobbyTx) active() []*postgres.Player {
	out := make([]*postgres.Player, 0, len(t.players))
	for _, p := range t.players {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

func (t *lobbyTx) saveLobby() error {
	if err := t.tx.Omit(clause.Associations).Save(t.lobby).Error; err != nil {
		return fmt.Errorf("save lobby %s: %w", t.lobby.Code, err)
	}
	return nil
}

func (t *lobbyTx) savePlayer(p *postgres.Player) error {
	if err := t.tx.Omit(clause.Associations).Save(p).Error; err != nil {
		return fmt.Errorf("save player %d: %w", p.ID, err)
	}
	return nil
}

// withLobby locks the lobby with the given code and runs fn against it.
func (s *Service) withLobby(ctx context.Context, code string, fn func(t *lobbyTx) error) error {
	code = normalizeCode(code)
	return s.withLockedLobby(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("code = ?", code)
	}, code, fn)
}

func (s *Service) withLobbyID(ctx context.Context, lobbyID uint, fn func(t *lobbyTx) error) error {
	return s.withLockedLobby(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ?", lobbyID)
	}, fmt.Sprintf("#%d", lobbyID), fn)
}

func (s *Service) withLockedLobby(ctx context.Context, scope func(*gorm.DB) *gorm.DB, label string, fn func(t *lobbyTx) error) error {
	var done *lobbyTx
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lobby postgres.Lobby
		err := scope(tx.Clauses(clause.Locking{Strength: "UPDATE"})).First(&lobby).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("lobby %s", label)
		}
		if err != nil {
			return fmt.Errorf("lock lobby %s: %w", label, err)
		}

		players, err := loadPlayers(tx, lobby.ID)
		if err != nil {
			return err
		}

		t := &lobbyTx{ctx: ctx, tx: tx, lobby: &lobby, players: players}
		if err := fn(t); err != nil {
			return err
		}
		done = t
		return nil
	})
	if err != nil {
		return err
	}
	s.flush(done)
	return nil
}

// flush publishes the buffered events of a committed transaction.
func (s *Service) flush(t *lobbyTx) {
	for _, ev := range t.outbox {
		s.publisher.Publish(t.lobby.Code, ev)
	}
	if s.restarts == nil {
		return
	}
	switch {
	case t.deleted:
		s.restarts.Cancel(t.lobby.ID)
	case t.finished:
		s.restarts.Schedule(t.lobby.ID)
	}
}

func loadPlayers(tx *gorm.DB, lobbyID uint) ([]*postgres.Player, error) {
	var players []*postgres.Player
	if err := tx.Where("lobby_id = ?", lobbyID).Order("id").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	return players, nil
}

// snapshot reads a lobby and its players without locking.
func (s *Service) snapshot(ctx context.Context, code string) (*postgres.Lobby, []*postgres.Player, error) {
	code = normalizeCode(code)
	db := s.db.WithContext(ctx)

	var lobby postgres.Lobby
	err := db.Where("code = ?", code).First(&lobby).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, notFound("lobby %s", code)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load lobby %s: %w", code, err)
	}
	players, err := loadPlayers(db, lobby.ID)
	if err != nil {
		return nil, nil, err
	}
	return &lobby, players, nil
}

func findSession(players []*postgres.Player, session string) *postgres.Player {
	for _, p := range players {
		if p.SessionID == session {
			return p
		}
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func publicPlayer(p *postgres.Player) events.PublicPlayer {
	return events.PublicPlayer{
		ID:           p.ID,
		Name:         p.Name,
		IsHost:       p.IsHost,
		IsEliminated: p.IsEliminated,
	}
}

func logLobby(l *postgres.Lobby) *zerolog.Event {
	return log.Info().Str("lobby", l.Code)
}
