package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// CreateRequestInput is a farmer's application for subsidized fertilizer.
type CreateRequestInput struct {
	StockID      uuid.UUID `json:"stock_id" validate:"required"`
	RequestedQty int       `json:"requested_qty" validate:"required,gt=0"`
	DocumentURL  *string   `json:"document_url" validate:"omitempty,url"`

	FarmerID  uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// ApproveRequestInput moves a pending request to verified. NewStockID lets
// the office substitute the fertilizer type before approval.
type ApproveRequestInput struct {
	RequestID   uuid.UUID  `json:"-"`
	ApprovedQty int        `json:"approved_qty" validate:"required,gt=0"`
	NewStockID  *uuid.UUID `json:"new_stock_id"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// ScheduleRequestInput attaches either an individual delivery plan or a
// distribution event link, never both.
type ScheduleRequestInput struct {
	RequestID    uuid.UUID  `json:"-"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Location     *string    `json:"location"`
	EventID      *uuid.UUID `json:"event_id"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// ShipRequestInput dispatches an individually scheduled request.
type ShipRequestInput struct {
	RequestID uuid.UUID `json:"-"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// CompleteRequestInput closes a shipped request once its receipt has been
// verified.
type CompleteRequestInput struct {
	RequestID uuid.UUID `json:"-"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// RejectRequestInput declines a request with a mandatory reason.
type RejectRequestInput struct {
	RequestID uuid.UUID `json:"-"`
	Reason    string    `json:"reason" validate:"required,min=3"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// CancelRequestInput withdraws a request before it is scheduled.
type CancelRequestInput struct {
	RequestID uuid.UUID `json:"-"`
	Reason    *string   `json:"reason"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// ListFilter narrows request listings.
type ListFilter struct {
	FarmerID *uuid.UUID
	Status   *enums.RequestStatus
	StockID  *uuid.UUID
	Limit    int
	Cursor   string
}

// RequestPage is one cursor page of requests.
type RequestPage struct {
	Requests   []models.FertilizerRequest `json:"requests"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}

// RequestDetail bundles a request with its delivery plan, if any.
type RequestDetail struct {
	Request  models.FertilizerRequest     `json:"request"`
	Schedule *models.DistributionSchedule `json:"schedule,omitempty"`
}

// ScheduleWithRequest is the distributor's view of a planned delivery.
type ScheduleWithRequest struct {
	Schedule models.DistributionSchedule `json:"schedule"`
	Request  models.FertilizerRequest    `json:"request"`
}

// ScheduleFilter narrows the distributor schedule listing.
type ScheduleFilter struct {
	Status *enums.ScheduleStatus
	Limit  int
	Cursor string
}

// SchedulePage is one cursor page of schedules.
type SchedulePage struct {
	Schedules  []ScheduleWithRequest `json:"schedules"`
	NextCursor *string               `json:"next_cursor,omitempty"`
}
