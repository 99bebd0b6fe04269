package postgres

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LobbyStatus string

const (
	LobbyWaiting  LobbyStatus = "waiting"
	LobbyPlaying  LobbyStatus = "playing"
	LobbyFinished LobbyStatus = "finished"
)

type GameResult string

const (
	ImpostorWins GameResult = "impostor_wins"
	CrewWins     GameResult = "crew_wins"
)

// Settings are the host-tunable knobs of a lobby, stored as JSON.
type Settings struct {
	ImpostorCount  int `json:"impostor_count"`
	MaxPlayers     int `json:"max_players"`
	DiscussionTime int `json:"discussion_time"`
	VotingTime     int `json:"voting_time"`
	WordDifficulty int `json:"word_difficulty"`
}

func DefaultSettings() Settings {
	return Settings{
		ImpostorCount:  1,
		MaxPlayers:     10,
		DiscussionTime: 60,
		VotingTime:     30,
		WordDifficulty: 3,
	}
}

/*
 * 'Lobby' is one game room. Turn order and the two ballot sets are stored
 * as JSON arrays of player ids; the row is locked FOR UPDATE by every
 * operation that mutates it.
 */
type Lobby struct {
	ID                  uint           `gorm:"primaryKey"`
	Code                string         `gorm:"size:10;not null;uniqueIndex"`
	Name                *string        `gorm:"size:50"`
	Status              LobbyStatus    `gorm:"size:16;not null;index"`
	Settings            datatypes.JSON
	WordID              *uint          `gorm:"index"`
	TurnOrder           datatypes.JSON
	CurrentTurnIndex    int
	CurrentTurnPlayerID *uint
	TurnStartedAt       *time.Time
	VoteNowVotes        datatypes.JSON
	RerollVotes         datatypes.JSON
	ImpostorWins        int
	CrewWins            int
	CurrentRound        int
	GameResult          *GameResult `gorm:"size:16"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Relationships
	Word     *Word      `gorm:"foreignKey:WordID"`
	Players  []*Player  `gorm:"foreignKey:LobbyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Messages []*Message `gorm:"foreignKey:LobbyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Random lobby code generation. Ambiguous glyphs (0/O, 1/I) are left out
// since codes are typed by hand.
const CodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const CodeLength = 6

func generateLobbyCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = CodeCharset[rand.Intn(len(CodeCharset))]
	}
	return string(b)
}

// BeforeCreate assigns a unique join code unless one was set by the caller.
func (l *Lobby) BeforeCreate(tx *gorm.DB) (err error) {
	if l.Code != "" {
		return nil
	}
	for {
		code := generateLobbyCode(CodeLength)
		var existing Lobby
		err := tx.Session(&gorm.Session{NewDB: true}).Where("code = ?", code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			l.Code = code
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (l *Lobby) decodeIDs(column string, raw datatypes.JSON) []uint {
	if len(raw) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		log.Error().Err(err).Uint("lobby_id", l.ID).Str("column", column).Msg("corrupt id list, treating as empty")
		return nil
	}
	return ids
}

func encodeIDs(ids []uint) datatypes.JSON {
	if ids == nil {
		ids = []uint{}
	}
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}

func (l *Lobby) TurnOrderIDs() []uint     { return l.decodeIDs("turn_order", l.TurnOrder) }
func (l *Lobby) SetTurnOrder(ids []uint)  { l.TurnOrder = encodeIDs(ids) }
func (l *Lobby) VoteNowIDs() []uint       { return l.decodeIDs("vote_now_votes", l.VoteNowVotes) }
func (l *Lobby) SetVoteNowIDs(ids []uint) { l.VoteNowVotes = encodeIDs(ids) }
func (l *Lobby) RerollIDs() []uint        { return l.decodeIDs("reroll_votes", l.RerollVotes) }
func (l *Lobby) SetRerollIDs(ids []uint)  { l.RerollVotes = encodeIDs(ids) }

// LobbySettings decodes the stored settings on top of the defaults, so a
// row written before a knob existed still yields a usable value.
func (l *Lobby) LobbySettings() Settings {
	settings := DefaultSettings()
	if len(l.Settings) == 0 {
		return settings
	}
	if err := json.Unmarshal(l.Settings, &settings); err != nil {
		log.Error().Err(err).Uint("lobby_id", l.ID).Msg("corrupt lobby settings, using defaults")
		return DefaultSettings()
	}
	return settings
}

func (l *Lobby) SetSettings(settings Settings) {
	raw, _ := json.Marshal(settings)
	l.Settings = datatypes.JSON(raw)
}

// ClearTurn drops the turn pointer, used when nobody can hold the turn.
func (l *Lobby) ClearTurn() {
	l.CurrentTurnIndex = 0
	l.CurrentTurnPlayerID = nil
	l.TurnStartedAt = nil
}
