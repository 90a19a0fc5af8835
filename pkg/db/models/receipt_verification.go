package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptVerification is the distributor's proof of delivery for one
// shipped request. The unique index on request_id makes it one-shot.
type ReceiptVerification struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID     uuid.UUID `gorm:"column:request_id;type:uuid;not null;uniqueIndex"`
	DistributorID uuid.UUID `gorm:"column:distributor_id;type:uuid;not null;index"`
	EvidenceURL   *string   `gorm:"column:evidence_url"`
	Note          *string   `gorm:"column:note"`
	VerifiedAt    time.Time `gorm:"column:verified_at;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
