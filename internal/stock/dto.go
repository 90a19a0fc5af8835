package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// CreateStockInput registers a new fertilizer type. A non-zero opening
// quantity is recorded as the first history entry so replay stays exact.
type CreateStockInput struct {
	Name            string `json:"name" validate:"required,min=2"`
	Unit            string `json:"unit" validate:"required"`
	OpeningQuantity int    `json:"opening_quantity" validate:"gte=0"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// UpdateStockInput renames a stock entry or fixes its unit label. Quantity
// is never edited directly; use Adjust.
type UpdateStockInput struct {
	StockID uuid.UUID `json:"-"`
	Name    *string   `json:"name" validate:"omitempty,min=2"`
	Unit    *string   `json:"unit" validate:"omitempty,min=1"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// AdjustStockInput applies a manual increase or decrease with an audit note.
type AdjustStockInput struct {
	StockID  uuid.UUID               `json:"-"`
	Type     enums.StockMovementType `json:"-"`
	Quantity int                     `json:"quantity" validate:"required,gt=0"`
	Unit     string                  `json:"unit" validate:"required"`
	Note     *string                 `json:"note"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// HistoryFilter narrows the stock history listing.
type HistoryFilter struct {
	StockID *uuid.UUID
	Type    *enums.StockMovementType
	From    *time.Time
	To      *time.Time
	Limit   int
	Cursor  string
}

// HistoryPage is one cursor page of history entries.
type HistoryPage struct {
	Entries    []models.StockHistoryEntry `json:"entries"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}

// ReplayResult compares the stored quantity against the history replay.
type ReplayResult struct {
	StockID        uuid.UUID `json:"stock_id"`
	StoredQuantity int       `json:"stored_quantity"`
	ReplayQuantity int       `json:"replay_quantity"`
	Consistent     bool      `json:"consistent"`
}
