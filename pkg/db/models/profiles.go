package models

import (
	"time"

	"github.com/google/uuid"
)

// FarmerProfile holds the identity documents a farmer submits before the
// program office verifies them. Verified gates request creation.
type FarmerProfile struct {
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	FullName      string    `gorm:"column:full_name;not null"`
	NIK           string    `gorm:"column:nik;type:varchar(16);not null;uniqueIndex"`
	Address       string    `gorm:"column:address;not null"`
	Phone         *string   `gorm:"column:phone"`
	IDCardURL     *string   `gorm:"column:id_card_url"`
	FarmerCardURL *string   `gorm:"column:farmer_card_url"`
	Verified      bool      `gorm:"column:verified;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DistributorProfile describes the delivery party attached to a distributor
// account.
type DistributorProfile struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	Company   string    `gorm:"column:company;not null"`
	Address   string    `gorm:"column:address;not null"`
	Phone     *string   `gorm:"column:phone"`
	Verified  bool      `gorm:"column:verified;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AdminProfile covers both admin and super_admin accounts.
type AdminProfile struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	Address   *string   `gorm:"column:address"`
	Phone     *string   `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
