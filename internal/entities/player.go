package entities

import (
	"time"
)

type PlayerSession struct {
	PlayerID   string `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	PlayerName string `gorm:"index"`
	Data       []byte `gorm:"not null"`
}

func (PlayerSession) TableName() string {
	return "player_sessions"
}
