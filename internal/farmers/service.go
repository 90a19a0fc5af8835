package farmers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

type harvestStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.HarvestRecord, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}

// ProfilePage is one cursor page of farmer profiles.
type ProfilePage struct {
	Profiles   []models.FarmerProfile `json:"profiles"`
	NextCursor *string                `json:"next_cursor,omitempty"`
}

// Service manages farmer profiles and the admin review queue.
type Service interface {
	UpsertProfile(ctx context.Context, input UpsertProfileInput) (*models.FarmerProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error)
	ListProfiles(ctx context.Context, filter ListFilter) (*ProfilePage, error)
	ReviewProfile(ctx context.Context, input ReviewProfileInput) (*models.FarmerProfile, error)
	ReviewHarvest(ctx context.Context, input ReviewHarvestInput) (*models.HarvestRecord, error)
	IsVerified(ctx context.Context, userID uuid.UUID) (bool, error)
}

type service struct {
	repo     Repository
	harvests harvestStore
}

// NewService wires a farmers service with the provided dependencies.
func NewService(repo Repository, harvests harvestStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("farmers repository required")
	}
	if harvests == nil {
		return nil, fmt.Errorf("harvest store required")
	}
	return &service{repo: repo, harvests: harvests}, nil
}

// UpsertProfile stores the farmer's identity submission. A changed identity
// document sends the profile back to the unverified review queue.
func (s *service) UpsertProfile(ctx context.Context, input UpsertProfileInput) (*models.FarmerProfile, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}
	nik := strings.TrimSpace(input.NIK)
	if !validNIK(nik) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nik must be 16 digits")
	}

	if owner, err := s.repo.FindByNIK(ctx, nik); err == nil && owner.UserID != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "nik already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check nik")
	}

	profile := &models.FarmerProfile{
		UserID:        input.UserID,
		FullName:      fullName,
		NIK:           nik,
		Address:       address,
		Phone:         input.Phone,
		IDCardURL:     input.IDCardURL,
		FarmerCardURL: input.FarmerCardURL,
		Verified:      false,
	}
	if existing, err := s.repo.FindByUser(ctx, input.UserID); err == nil {
		profile.Verified = existing.Verified && !identityChanged(existing, profile)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "nik already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return profile, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

func (s *service) ListProfiles(ctx context.Context, filter ListFilter) (*ProfilePage, error) {
	profiles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &ProfilePage{Profiles: profiles}
	if len(profiles) > limit {
		page.Profiles = profiles[:limit]
		last := page.Profiles[limit-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.UserID})
		page.NextCursor = &cursor
	}
	return page, nil
}

func (s *service) ReviewProfile(ctx context.Context, input ReviewProfileInput) (*models.FarmerProfile, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id required")
	}
	if err := s.repo.SetVerified(ctx, input.UserID, input.Approve); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile verification")
	}
	return s.repo.FindByUser(ctx, input.UserID)
}

func (s *service) ReviewHarvest(ctx context.Context, input ReviewHarvestInput) (*models.HarvestRecord, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.HarvestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harvest id required")
	}
	if _, err := s.harvests.FindByID(ctx, input.HarvestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "harvest record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load harvest record")
	}
	if err := s.harvests.SetVerified(ctx, input.HarvestID, input.Approve); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update harvest verification")
	}
	return s.harvests.FindByID(ctx, input.HarvestID)
}

// IsVerified reports whether the farmer passed admin review; a missing
// profile counts as unverified.
func (s *service) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile.Verified, nil
}

func identityChanged(existing, next *models.FarmerProfile) bool {
	if existing.NIK != next.NIK || existing.FullName != next.FullName {
		return true
	}
	return !equalURL(existing.IDCardURL, next.IDCardURL) ||
		!equalURL(existing.FarmerCardURL, next.FarmerCardURL)
}

func equalURL(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validNIK(nik string) bool {
	if len(nik) != 16 {
		return false
	}
	for _, r := range nik {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func requireStaff(actorID uuid.UUID, role enums.UserRole) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	return nil
}
