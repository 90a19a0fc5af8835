package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// FertilizerRequest is a farmer's application for subsidized fertilizer.
// ApprovedQty is set exactly once during approval and never changes after.
type FertilizerRequest struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID     uuid.UUID           `gorm:"column:farmer_id;type:uuid;not null;index"`
	StockID      uuid.UUID           `gorm:"column:stock_id;type:uuid;not null;index"`
	RequestedQty int                 `gorm:"column:requested_qty;not null"`
	ApprovedQty  *int                `gorm:"column:approved_qty"`
	Status       enums.RequestStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	Reason       *string             `gorm:"column:reason"`
	DocumentURL  *string             `gorm:"column:document_url"`
	EventID      *uuid.UUID          `gorm:"column:event_id;type:uuid;index"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
