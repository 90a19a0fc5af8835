package farmers

import (
	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// UpsertProfileInput carries the farmer's identity submission. Changing the
// identity documents sends the profile back through admin review.
type UpsertProfileInput struct {
	FullName      string  `json:"full_name" validate:"required"`
	NIK           string  `json:"nik" validate:"required,len=16,numeric"`
	Address       string  `json:"address" validate:"required"`
	Phone         *string `json:"phone"`
	IDCardURL     *string `json:"id_card_url" validate:"omitempty,url"`
	FarmerCardURL *string `json:"farmer_card_url" validate:"omitempty,url"`

	UserID uuid.UUID `json:"-"`
}

// ReviewProfileInput approves or rejects a pending farmer profile.
type ReviewProfileInput struct {
	UserID  uuid.UUID `json:"-"`
	Approve bool      `json:"approve"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// ReviewHarvestInput approves or rejects a reported harvest.
type ReviewHarvestInput struct {
	HarvestID uuid.UUID `json:"-"`
	Approve   bool      `json:"approve"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// ListFilter narrows profile listings for the admin review queue.
type ListFilter struct {
	Verified *bool
	Limit    int
	Cursor   *string
}
