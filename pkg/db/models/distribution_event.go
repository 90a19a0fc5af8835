package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// DistributionEvent groups multiple requests into a single batch delivery.
type DistributionEvent struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string            `gorm:"column:name;not null"`
	Date      time.Time         `gorm:"column:date;not null"`
	Location  string            `gorm:"column:location;not null"`
	Status    enums.EventStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	Items     []EventItem       `gorm:"foreignKey:EventID"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// EventItem is the per-fertilizer allocation of a distribution event.
type EventItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;not null;index"`
	StockID   uuid.UUID `gorm:"column:stock_id;type:uuid;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Unit      string    `gorm:"column:unit;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
