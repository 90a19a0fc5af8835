package farmers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// Repository manages persistence for farmer profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, profile *models.FarmerProfile) error
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error)
	FindByNIK(ctx context.Context, nik string) (*models.FarmerProfile, error)
	List(ctx context.Context, filter ListFilter) ([]models.FarmerProfile, error)
	SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a farmers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, profile *models.FarmerProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"full_name", "nik", "address", "phone",
				"id_card_url", "farmer_card_url", "verified", "updated_at",
			}),
		}).
		Create(profile).Error
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByNIK(ctx context.Context, nik string) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	if err := r.db.WithContext(ctx).Where("nik = ?", nik).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.FarmerProfile, error) {
	query := r.db.WithContext(ctx).Model(&models.FarmerProfile{})
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}
	if filter.Cursor != nil {
		cursor, err := pagination.ParseCursor(*filter.Cursor)
		if err != nil {
			return nil, err
		}
		query = query.Where(
			"(created_at, user_id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	var profiles []models.FarmerProfile
	err := query.
		Order("created_at DESC, user_id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.FarmerProfile{}).
		Where("user_id = ?", userID).
		Update("verified", verified)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
