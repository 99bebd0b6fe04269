package events

import "time"

// PublicPlayer is the part of a player every lobby member may see.
type PublicPlayer struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	IsEliminated bool   `json:"is_eliminated"`
}

type GameStartedPayload struct {
	LobbyStatus  string `json:"lobby_status"`
	WordCategory string `json:"word_category"`
	Difficulty   int    `json:"difficulty"`
	CurrentRound int    `json:"current_round"`
}

type PlayerJoinedPayload struct {
	Player      PublicPlayer `json:"player"`
	PlayerCount int          `json:"player_count"`
}

type PlayerLeftPayload struct {
	PlayerID    uint  `json:"player_id"`
	NewHostID   *uint `json:"new_host_id,omitempty"`
	PlayerCount int   `json:"player_count"`
}

type PlayerVotedPayload struct {
	VoterID uint `json:"voter_id"`
	Skipped bool `json:"skipped"`
}

type EliminatedPlayer struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	IsImpostor bool   `json:"is_impostor"`
}

type VotingEndedPayload struct {
	EliminatedPlayer *EliminatedPlayer `json:"eliminated_player"`
	GameResult       *string           `json:"game_result"`
	LobbyStatus      string            `json:"lobby_status"`
	ImpostorWins     int               `json:"impostor_wins"`
	CrewWins         int               `json:"crew_wins"`
}

type TurnAdvancedPayload struct {
	CurrentTurnPlayerID uint      `json:"current_turn_player_id"`
	CurrentTurnIndex    int       `json:"current_turn_index"`
	CurrentRound        int       `json:"current_round"`
	TurnStartedAt       time.Time `json:"turn_started_at"`
}

// BallotPayload reports progress of a vote-now or reroll ballot.
type BallotPayload struct {
	Count     int  `json:"count"`
	Threshold int  `json:"threshold"`
	Activated bool `json:"activated"`
	Progress  int  `json:"progress"`
}

type WordRerolledPayload struct {
	WordCategory string `json:"word_category"`
	Difficulty   int    `json:"difficulty"`
}

type WordRerollFailedPayload struct {
	Reason string `json:"reason"`
}

type SettingsUpdatedPayload struct {
	Settings any `json:"settings"`
}

type MessagePayload struct {
	ID          uint      `json:"id"`
	SenderID    uint      `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	RecipientID *uint     `json:"recipient_id"`
	Content     string    `json:"content"`
	IsDM        bool      `json:"is_dm"`
	CreatedAt   time.Time `json:"created_at"`
}
