package harvests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// ListFilter narrows harvest listings.
type ListFilter struct {
	FarmerID *uuid.UUID
	Verified *bool
	Limit    int
	Cursor   *string
}

// Repository manages persistence for harvest records.
type Repository interface {
	Create(ctx context.Context, record *models.HarvestRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.HarvestRecord, error)
	List(ctx context.Context, filter ListFilter) ([]models.HarvestRecord, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a harvests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *models.HarvestRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.HarvestRecord, error) {
	var record models.HarvestRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.HarvestRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.HarvestRecord{})
	if filter.FarmerID != nil {
		query = query.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}
	if filter.Cursor != nil {
		cursor, err := pagination.ParseCursor(*filter.Cursor)
		if err != nil {
			return nil, err
		}
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	var records []models.HarvestRecord
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.HarvestRecord{}).
		Where("id = ?", id).
		Update("verified", verified)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
