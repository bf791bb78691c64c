package storage

import (
	"time"

	"github.com/google/uuid"
)

// Game is a game hosted by the reference oracle.
type Game struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FEN         string
	Turn        string
	Status      string
	Active      bool `gorm:"index"`
	CompletedAt *time.Time
	LastSeen    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Moves       []Move
}

// Move stores one applied move together with its wire encoding.
type Move struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GameID    uuid.UUID `gorm:"type:uuid;index"`
	Game      Game      `gorm:"constraint:OnDelete:CASCADE;"`
	Number    int
	From      string
	To        string
	Kind      string
	Encoded   string
	FEN       string
	CreatedAt time.Time
}
