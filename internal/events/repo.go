package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// Repository manages persistence for distribution events. It also touches
// the requests table: event fulfillment flips linked requests inside the
// same transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.DistributionEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DistributionEvent, error)
	List(ctx context.Context, filter ListFilter) ([]models.DistributionEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error
	ListScheduledRequests(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error)
	ListLinkedRequests(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error)
	MarkRequestShipped(ctx context.Context, requestID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an events repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.DistributionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DistributionEvent, error) {
	var event models.DistributionEvent
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.DistributionEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.DistributionEvent{}).Preload("Items")
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

	var events []models.DistributionEvent
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.DistributionEvent{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListScheduledRequests returns linked requests in creation order, the order
// in which they consume the event budget.
func (r *repository) ListScheduledRequests(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error) {
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

func (r *repository) ListLinkedRequests(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error) {
	var requests []models.FertilizerRequest
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) MarkRequestShipped(ctx context.Context, requestID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.FertilizerRequest{}).
		Where("id = ?", requestID).
		Update("status", enums.RequestStatusShipped).Error
}
