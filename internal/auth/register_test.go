package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/internal/farmers"
	"github.com/wicaksonohadi/sipupuk-backend/internal/users"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/security"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUsersRepo struct {
	byUsername map[string]*models.User
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{byUsername: map[string]*models.User{}}
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	s.byUsername[user.Username] = &copied
	return nil
}

func (s *stubUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := s.byUsername[username]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byUsername {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) List(ctx context.Context, filter users.ListFilter) ([]models.User, error) {
	return nil, nil
}

func (s *stubUsersRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubUsersRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubUsersRepo) CountByRole(ctx context.Context) (map[enums.UserRole]int64, error) {
	return nil, nil
}

func (s *stubUsersRepo) CreateAdminProfile(ctx context.Context, profile *models.AdminProfile) error {
	return nil
}

func (s *stubUsersRepo) CreateDistributorProfile(ctx context.Context, profile *models.DistributorProfile) error {
	return nil
}

type stubFarmersRepo struct {
	byUser map[uuid.UUID]*models.FarmerProfile
}

func newStubFarmersRepo() *stubFarmersRepo {
	return &stubFarmersRepo{byUser: map[uuid.UUID]*models.FarmerProfile{}}
}

func (s *stubFarmersRepo) WithTx(tx *gorm.DB) farmers.Repository { return s }

func (s *stubFarmersRepo) Upsert(ctx context.Context, profile *models.FarmerProfile) error {
	copied := *profile
	s.byUser[profile.UserID] = &copied
	return nil
}

func (s *stubFarmersRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error) {
	if profile, ok := s.byUser[userID]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubFarmersRepo) FindByNIK(ctx context.Context, nik string) (*models.FarmerProfile, error) {
	for _, profile := range s.byUser {
		if profile.NIK == nik {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubFarmersRepo) List(ctx context.Context, filter farmers.ListFilter) ([]models.FarmerProfile, error) {
	return nil, nil
}

func (s *stubFarmersRepo) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	return nil
}

func newTestRegisterService(t *testing.T) (RegisterService, *stubUsersRepo, *stubFarmersRepo) {
	t.Helper()
	usersRepo := newStubUsersRepo()
	farmersRepo := newStubFarmersRepo()
	svc, err := NewRegisterService(RegisterServiceParams{
		Users:          usersRepo,
		Farmers:        farmersRepo,
		Tx:             stubTxRunner{},
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, usersRepo, farmersRepo
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Username: "Budi",
		Password: "rahasia-123",
		FullName: "Budi Santoso",
		NIK:      "3201011503900001",
		Address:  "Desa Sukamaju RT 02",
	}
}

func TestRegister(t *testing.T) {
	svc, usersRepo, farmersRepo := newTestRegisterService(t)

	if err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	user, ok := usersRepo.byUsername["budi"]
	if !ok {
		t.Fatal("user not created under lowercased username")
	}
	if user.Role != enums.UserRoleFarmer {
		t.Fatalf("expected petani role, got %s", user.Role)
	}
	match, err := security.VerifyPassword("rahasia-123", user.PasswordHash)
	if err != nil || !match {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	profile, ok := farmersRepo.byUser[user.ID]
	if !ok {
		t.Fatal("farmer profile not created")
	}
	if profile.Verified {
		t.Fatal("new profile must start unverified")
	}
	if profile.NIK != "3201011503900001" {
		t.Fatalf("unexpected nik %q", profile.NIK)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestRegisterService(t)

	if err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	req := validRegisterRequest()
	req.NIK = "3201011503900002"
	err := svc.Register(context.Background(), req)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestRegister_DuplicateNIK(t *testing.T) {
	svc, _, _ := newTestRegisterService(t)

	if err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	req := validRegisterRequest()
	req.Username = "lain"
	err := svc.Register(context.Background(), req)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestRegisterService(t)

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"short username", func(r *RegisterRequest) { r.Username = "ab" }},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }},
		{"missing full name", func(r *RegisterRequest) { r.FullName = " " }},
		{"missing address", func(r *RegisterRequest) { r.Address = "" }},
		{"bad nik", func(r *RegisterRequest) { r.NIK = "123" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegisterRequest()
			tc.mutate(&req)
			err := svc.Register(context.Background(), req)
			expectCode(t, err, pkgerrors.CodeValidation)
		})
	}
}
