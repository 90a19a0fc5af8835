package requests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a requests repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.FertilizerRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerRequest, error) {
	var request models.FertilizerRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.FertilizerRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.FertilizerRequest{})
	if filter.FarmerID != nil {
		query = query.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StockID != nil {
		query = query.Where("stock_id = ?", *filter.StockID)
	}
	if cursor, err := pagination.ParseCursor(filter.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var requests []models.FertilizerRequest
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.FertilizerRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListScheduledByEvent returns event-linked requests in creation order, the
// order in which the event budget is consumed.
func (r *repository) ListScheduledByEvent(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error) {
	var requests []models.FertilizerRequest
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, enums.RequestStatusScheduled).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) CreateSchedule(ctx context.Context, schedule *models.DistributionSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *repository) FindScheduleByRequest(ctx context.Context, requestID uuid.UUID) (*models.DistributionSchedule, error) {
	var schedule models.DistributionSchedule
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) UpdateScheduleStatus(ctx context.Context, requestID uuid.UUID, status enums.ScheduleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.DistributionSchedule{}).
		Where("request_id = ?", requestID).
		Update("status", status).Error
}

func (r *repository) ListSchedules(ctx context.Context, filter ScheduleFilter) ([]ScheduleWithRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.DistributionSchedule{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if cursor, err := pagination.ParseCursor(filter.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var schedules []models.DistributionSchedule
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}

	out := make([]ScheduleWithRequest, 0, len(schedules))
	for _, schedule := range schedules {
		var request models.FertilizerRequest
		if err := r.db.WithContext(ctx).Where("id = ?", schedule.RequestID).First(&request).Error; err != nil {
			return nil, err
		}
		out = append(out, ScheduleWithRequest{Schedule: schedule, Request: request})
	}
	return out, nil
}
