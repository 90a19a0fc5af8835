package models

import (
	"time"

	"github.com/google/uuid"
)

// FertilizerStock tracks the on-hand quantity per fertilizer type.
// Quantity never goes negative; every mutation appends a StockHistoryEntry.
type FertilizerStock struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	Unit      string    `gorm:"column:unit;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
