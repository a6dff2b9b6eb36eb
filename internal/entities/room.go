package entities

import (
	"time"
)

// Room stores one serialized room. ID is kept as text so a corrupt row can be
// skipped at load instead of failing the scan.
type Room struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Revision  int64  `gorm:"not null;default:0"`
	Data      []byte `gorm:"not null"`
}
