package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// EventItemInput is one fertilizer allocation inside a new event.
type EventItemInput struct {
	StockID  uuid.UUID `json:"stock_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// CreateEventInput registers a batch distribution with its allocations.
type CreateEventInput struct {
	Name     string           `json:"name" validate:"required,min=3"`
	Date     time.Time        `json:"date" validate:"required"`
	Location string           `json:"location" validate:"required"`
	Items    []EventItemInput `json:"items" validate:"required,min=1,dive"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// FulfillEventInput executes the batch shipment for one event.
type FulfillEventInput struct {
	EventID uuid.UUID `json:"-"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// FulfillResult reports which linked requests shipped and which stayed
// behind because the per-item budget ran out.
type FulfillResult struct {
	EventID          uuid.UUID   `json:"event_id"`
	ShippedRequests  []uuid.UUID `json:"shipped_requests"`
	SkippedRequests  []uuid.UUID `json:"skipped_requests"`
	DeductedQuantity int         `json:"deducted_quantity"`
}

// ListFilter narrows the event listing.
type ListFilter struct {
	Status *enums.EventStatus
	Limit  int
	Cursor string
}

// EventPage is one cursor page of events.
type EventPage struct {
	Events     []models.DistributionEvent `json:"events"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}
