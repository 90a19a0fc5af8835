package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// UserPage is one cursor page of users.
type UserPage struct {
	Users      []UserDTO `json:"users"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

// Service is the super admin's account management surface.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Get(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, actorRole enums.UserRole, filter ListFilter) (*UserPage, error)
	Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, id uuid.UUID) error
	Counts(ctx context.Context, actorRole enums.UserRole) (*RoleCounts, error)
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           Repository
	Tx             txRunner
	PasswordConfig config.PasswordConfig
}

type service struct {
	repo        Repository
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Create provisions an account and its role profile in one transaction.
// Farmer accounts come through self-registration, not here.
func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	if err := requireSuperAdmin(input.ActorRole); err != nil {
		return nil, err
	}
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if len(username) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 3 characters")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Role == enums.UserRoleFarmer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer accounts register themselves")
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if input.Role == enums.UserRoleDistributor {
		if input.Company == nil || strings.TrimSpace(*input.Company) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "company required for distributor accounts")
		}
		if input.Address == nil || strings.TrimSpace(*input.Address) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "address required for distributor accounts")
		}
	}

	passwordHash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         input.Role,
		IsActive:     true,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}

		if err := repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		switch input.Role {
		case enums.UserRoleDistributor:
			return repo.CreateDistributorProfile(ctx, &models.DistributorProfile{
				UserID:   user.ID,
				FullName: fullName,
				Company:  strings.TrimSpace(*input.Company),
				Address:  strings.TrimSpace(*input.Address),
				Phone:    input.Phone,
				Verified: true,
			})
		default:
			return repo.CreateAdminProfile(ctx, &models.AdminProfile{
				UserID:   user.ID,
				FullName: fullName,
				Address:  input.Address,
				Phone:    input.Phone,
			})
		}
	})
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) (*UserDTO, error) {
	if err := requireSuperAdmin(actorRole); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, actorRole enums.UserRole, filter ListFilter) (*UserPage, error) {
	if err := requireSuperAdmin(actorRole); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &UserPage{Users: make([]UserDTO, 0, len(list))}
	trimmed := list
	if len(list) > limit {
		trimmed = list[:limit]
		last := trimmed[limit-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	for i := range trimmed {
		page.Users = append(page.Users, *FromModel(&trimmed[i]))
	}
	return page, nil
}

// Update changes is_active or resets the password. The role column never
// changes after creation.
func (s *service) Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error) {
	if err := requireSuperAdmin(input.ActorRole); err != nil {
		return nil, err
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	updates := map[string]any{}
	if input.IsActive != nil {
		if input.UserID == input.ActorID && !*input.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate own account")
		}
		updates["is_active"] = *input.IsActive
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}

	if err := s.repo.UpdateFields(ctx, input.UserID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}

	user, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, id uuid.UUID) error {
	if err := requireSuperAdmin(actorRole); err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if id == actorID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) Counts(ctx context.Context, actorRole enums.UserRole) (*RoleCounts, error) {
	if err := requireSuperAdmin(actorRole); err != nil {
		return nil, err
	}
	byRole, err := s.repo.CountByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	counts := &RoleCounts{
		Petani:      byRole[enums.UserRoleFarmer],
		Admin:       byRole[enums.UserRoleAdmin],
		Distributor: byRole[enums.UserRoleDistributor],
		SuperAdmin:  byRole[enums.UserRoleSuperAdmin],
	}
	counts.Total = counts.Petani + counts.Admin + counts.Distributor + counts.SuperAdmin
	return counts, nil
}

func requireSuperAdmin(role enums.UserRole) error {
	if role != enums.UserRoleSuperAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "super admin role required")
	}
	return nil
}
