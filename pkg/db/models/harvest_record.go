package models

import (
	"time"

	"github.com/google/uuid"
)

// HarvestRecord is a farmer-reported harvest awaiting admin verification.
type HarvestRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID    uuid.UUID `gorm:"column:farmer_id;type:uuid;not null;index"`
	CropType    string    `gorm:"column:crop_type;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	Unit        string    `gorm:"column:unit;not null"`
	HarvestDate time.Time `gorm:"column:harvest_date;not null"`
	Verified    bool      `gorm:"column:verified;not null;default:false"`
	EvidenceURL *string   `gorm:"column:evidence_url"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
