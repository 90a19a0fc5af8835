package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// StockHistoryEntry records an immutable stock movement. Entries are only
// ever appended; replaying them reproduces the stock quantity.
type StockHistoryEntry struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StockID   uuid.UUID               `gorm:"column:stock_id;type:uuid;not null;index"`
	Type      enums.StockMovementType `gorm:"column:type;type:text;not null"`
	Quantity  int                     `gorm:"column:quantity;not null"`
	Unit      string                  `gorm:"column:unit;not null"`
	Note      *string                 `gorm:"column:note"`
	ActorID   uuid.UUID               `gorm:"column:actor_id;type:uuid;not null"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}
