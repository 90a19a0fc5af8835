package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/internal/farmers"
	"github.com/wicaksonohadi/sipupuk-backend/internal/users"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterService handles farmer onboarding: account plus unverified profile
// in one transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	Users          users.Repository
	Farmers        farmers.Repository
	Tx             txRunner
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	users       users.Repository
	farmers     farmers.Repository
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repository required")
	}
	if params.Farmers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "farmers repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &registerService{
		users:       params.Users,
		farmers:     params.Farmers,
		tx:          params.Tx,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if len(username) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 3 characters")
	}
	if len(req.Password) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}
	nik := strings.TrimSpace(req.NIK)
	if !validNIK(nik) {
		return pkgerrors.New(pkgerrors.CodeValidation, "nik must be 16 digits")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		farmerRepo := s.farmers.WithTx(tx)

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}
		if _, err := farmerRepo.FindByNIK(ctx, nik); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "nik already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check nik")
		}

		user := &models.User{
			Username:     username,
			PasswordHash: passwordHash,
			Role:         enums.UserRoleFarmer,
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		profile := &models.FarmerProfile{
			UserID:   user.ID,
			FullName: fullName,
			NIK:      nik,
			Address:  address,
			Phone:    req.Phone,
			Verified: false,
		}
		if err := farmerRepo.Upsert(ctx, profile); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "nik already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create farmer profile")
		}
		return nil
	})
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
