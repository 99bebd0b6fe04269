package postgres

import "time"

// Message is a lobby chat line. RecipientID is set for direct messages.
type Message struct {
	ID          uint   `gorm:"primaryKey"`
	LobbyID     uint   `gorm:"not null;index"`
	SenderID    uint   `gorm:"not null;index"`
	RecipientID *uint  `gorm:"index"`
	Content     string `gorm:"type:text;not null"`
	IsDM        bool
	IsRead      bool
	CreatedAt   time.Time

	Sender *Player `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE;"`
}
