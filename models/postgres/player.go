package postgres

import "time"

// Player is a per-lobby participant identified by the session that joined.
// Names are only unique-ish; the (lobby, session) pair is the real identity.
type Player struct {
	ID              uint   `gorm:"primaryKey"`
	LobbyID         uint   `gorm:"not null;uniqueIndex:idx_players_lobby_session"`
	SessionID       string `gorm:"size:64;not null;uniqueIndex:idx_players_lobby_session"`
	Name            string `gorm:"size:30;not null"`
	IsHost          bool
	IsImpostor      bool
	IsEliminated    bool
	WordID          *uint `gorm:"index"`
	ImpostorStreak  int
	HasVotedVoteNow bool
	HasVotedReroll  bool
	TurnPosition    *int
	LastActiveAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Word *Word `gorm:"foreignKey:WordID"`
}

// Active reports whether the player still takes part in the round.
func (p *Player) Active() bool {
	return !p.IsEliminated
}
