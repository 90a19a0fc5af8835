package requests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// Repository defines persistence operations for requests and their schedules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.FertilizerRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerRequest, error)
	List(ctx context.Context, filter ListFilter) ([]models.FertilizerRequest, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListScheduledByEvent(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error)

	CreateSchedule(ctx context.Context, schedule *models.DistributionSchedule) error
	FindScheduleByRequest(ctx context.Context, requestID uuid.UUID) (*models.DistributionSchedule, error)
	UpdateScheduleStatus(ctx context.Context, requestID uuid.UUID, status enums.ScheduleStatus) error
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]ScheduleWithRequest, error)
}
