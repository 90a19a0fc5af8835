package verifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
)

// Repository manages persistence for receipt verifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, verification *models.ReceiptVerification) error
	FindByRequest(ctx context.Context, requestID uuid.UUID) (*models.ReceiptVerification, error)
	HasVerification(ctx context.Context, requestID uuid.UUID) (bool, error)
	ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]models.ReceiptVerification, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a verifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, verification *models.ReceiptVerification) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

func (r *repository) FindByRequest(ctx context.Context, requestID uuid.UUID) (*models.ReceiptVerification, error) {
	var verification models.ReceiptVerification
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&verification).Error; err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *repository) HasVerification(ctx context.Context, requestID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReceiptVerification{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]models.ReceiptVerification, error) {
	var verifications []models.ReceiptVerification
	err := r.db.WithContext(ctx).
		Where("distributor_id = ?", distributorID).
		Order("created_at DESC").
		Find(&verifications).Error
	if err != nil {
		return nil, err
	}
	return verifications, nil
}
