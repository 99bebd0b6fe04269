package postgres

import "time"

/*
 * 'Word' is one catalog entry. A crew word points at its impostor
 * counterpart through ImpostorWordID; impostor words never point anywhere
 * and are never picked as the round word.
 */
type Word struct {
	ID             uint   `gorm:"primaryKey"`
	Text           string `gorm:"column:word;size:100;not null;uniqueIndex:idx_words_word_language"`
	Category       string `gorm:"size:50;not null;index"`
	Difficulty     int    `gorm:"not null"`
	Language       string `gorm:"size:8;not null;index;uniqueIndex:idx_words_word_language"`
	ImpostorWordID *uint  `gorm:"index"`
	IsImpostorWord bool   `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	ImpostorWord *Word `gorm:"foreignKey:ImpostorWordID"`
}

// WordUsage records that a word was dealt in a given global round.
type WordUsage struct {
	ID        uint   `gorm:"primaryKey"`
	WordID    uint   `gorm:"not null;index"`
	Round     uint64 `gorm:"not null;index"`
	CreatedAt time.Time
}

func (WordUsage) TableName() string {
	return "word_usage"
}

// RoundCounterID is the primary key of the single GameRound row.
const RoundCounterID = 1

// GameRound is the process-wide round counter used for word cooldowns.
type GameRound struct {
	ID           uint   `gorm:"primaryKey;autoIncrement:false"`
	CurrentRound uint64 `gorm:"not null"`
	UpdatedAt    time.Time
}
