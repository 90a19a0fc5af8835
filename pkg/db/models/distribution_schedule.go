package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// DistributionSchedule plans the individual delivery for one request.
// Its status mirrors the request from scheduled onward.
type DistributionSchedule struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID    uuid.UUID            `gorm:"column:request_id;type:uuid;not null;uniqueIndex"`
	DeliveryDate time.Time            `gorm:"column:delivery_date;not null"`
	Location     string               `gorm:"column:location;not null"`
	Status       enums.ScheduleStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
