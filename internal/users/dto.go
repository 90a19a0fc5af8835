package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Username    string         `json:"username"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FromModel converts a persisted user into its transport shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CreateUserInput is the super admin's payload for provisioning an account.
type CreateUserInput struct {
	Username string         `json:"username" validate:"required,min=3"`
	Password string         `json:"password" validate:"required,min=8"`
	Role     enums.UserRole `json:"role" validate:"required"`
	FullName string         `json:"full_name" validate:"required"`
	Company  *string        `json:"company,omitempty"`
	Address  *string        `json:"address,omitempty"`
	Phone    *string        `json:"phone,omitempty"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// UpdateUserInput carries the mutable account fields. Role is immutable
// after creation.
type UpdateUserInput struct {
	IsActive *bool   `json:"is_active,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`

	UserID    uuid.UUID      `json:"-"`
	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// ListFilter narrows user listings.
type ListFilter struct {
	Role   *enums.UserRole
	Limit  int
	Cursor *string
}

// RoleCounts summarizes accounts per role for the superadmin dashboard.
type RoleCounts struct {
	Petani      int64 `json:"petani"`
	Admin       int64 `json:"admin"`
	Distributor int64 `json:"distributor"`
	SuperAdmin  int64 `json:"super_admin"`
	Total       int64 `json:"total"`
}
