package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	users        map[uuid.UUID]*models.User
	admins       map[uuid.UUID]*models.AdminProfile
	distributors map[uuid.UUID]*models.DistributorProfile
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:        map[uuid.UUID]*models.User{},
		admins:       map[uuid.UUID]*models.AdminProfile{},
		distributors: map[uuid.UUID]*models.DistributorProfile{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter) ([]models.User, error) {
	out := []models.User{}
	for _, user := range f.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["is_active"]; ok {
		user.IsActive = v.(bool)
	}
	if v, ok := updates["password_hash"]; ok {
		user.PasswordHash = v.(string)
	}
	return nil
}

func (f *fakeRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := f.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepository) CountByRole(ctx context.Context) (map[enums.UserRole]int64, error) {
	counts := map[enums.UserRole]int64{}
	for _, user := range f.users {
		counts[user.Role]++
	}
	return counts, nil
}

func (f *fakeRepository) CreateAdminProfile(ctx context.Context, profile *models.AdminProfile) error {
	copied := *profile
	f.admins[profile.UserID] = &copied
	return nil
}

func (f *fakeRepository) CreateDistributorProfile(ctx context.Context, profile *models.DistributorProfile) error {
	copied := *profile
	f.distributors[profile.UserID] = &copied
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc, err := NewService(ServiceParams{Repo: repo, Tx: fakeTxRunner{}, PasswordConfig: testPasswordConfig()})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestCreate_DistributorWithProfile(t *testing.T) {
	svc, repo := newTestService(t)
	company := "PT Pupuk Jaya"
	address := "Jl. Raya 1"

	dto, err := svc.Create(context.Background(), CreateUserInput{
		Username: "Distributor1",
		Password: "rahasia-123",
		Role:     enums.UserRoleDistributor,
		FullName: "Andi Wijaya",
		Company:  &company,
		Address:  &address,
		ActorID:  uuid.New(), ActorRole: enums.UserRoleSuperAdmin,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if dto.Username != "distributor1" {
		t.Fatalf("username must be lowercased, got %q", dto.Username)
	}
	profile, ok := repo.distributors[dto.ID]
	if !ok {
		t.Fatal("distributor profile not created")
	}
	if profile.Company != company {
		t.Fatalf("unexpected company %q", profile.Company)
	}
	stored := repo.users[dto.ID]
	if stored.PasswordHash == "rahasia-123" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	superAdmin := uuid.New()

	tests := []struct {
		name  string
		input CreateUserInput
		code  pkgerrors.Code
	}{
		{
			name:  "not super admin",
			input: CreateUserInput{Username: "admin2", Password: "rahasia-123", Role: enums.UserRoleAdmin, FullName: "A", ActorID: superAdmin, ActorRole: enums.UserRoleAdmin},
			code:  pkgerrors.CodeForbidden,
		},
		{
			name:  "farmer role rejected",
			input: CreateUserInput{Username: "petani9", Password: "rahasia-123", Role: enums.UserRoleFarmer, FullName: "B", ActorID: superAdmin, ActorRole: enums.UserRoleSuperAdmin},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "short password",
			input: CreateUserInput{Username: "admin2", Password: "short", Role: enums.UserRoleAdmin, FullName: "C", ActorID: superAdmin, ActorRole: enums.UserRoleSuperAdmin},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "distributor without company",
			input: CreateUserInput{Username: "dist2", Password: "rahasia-123", Role: enums.UserRoleDistributor, FullName: "D", ActorID: superAdmin, ActorRole: enums.UserRoleSuperAdmin},
			code:  pkgerrors.CodeValidation,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			expectCode(t, err, tc.code)
		})
	}
}

func TestCreate_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	superAdmin := uuid.New()
	input := CreateUserInput{
		Username: "admin2", Password: "rahasia-123", Role: enums.UserRoleAdmin,
		FullName: "Siti", ActorID: superAdmin, ActorRole: enums.UserRoleSuperAdmin,
	}

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), input)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdate_RoleIsImmutable(t *testing.T) {
	// Update has no role field at all; verify the stored role survives an
	// is_active flip.
	svc, repo := newTestService(t)
	superAdmin := uuid.New()

	user := &models.User{ID: uuid.New(), Username: "admin2", Role: enums.UserRoleAdmin, IsActive: true}
	repo.users[user.ID] = user

	inactive := false
	dto, err := svc.Update(context.Background(), UpdateUserInput{
		UserID: user.ID, IsActive: &inactive,
		ActorID: superAdmin, ActorRole: enums.UserRoleSuperAdmin,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if dto.IsActive {
		t.Fatal("is_active not updated")
	}
	if dto.Role != enums.UserRoleAdmin {
		t.Fatalf("role changed to %s", dto.Role)
	}
}

func TestUpdate_SelfDeactivateRejected(t *testing.T) {
	svc, repo := newTestService(t)
	superAdmin := &models.User{ID: uuid.New(), Username: "root", Role: enums.UserRoleSuperAdmin, IsActive: true}
	repo.users[superAdmin.ID] = superAdmin

	inactive := false
	_, err := svc.Update(context.Background(), UpdateUserInput{
		UserID: superAdmin.ID, IsActive: &inactive,
		ActorID: superAdmin.ID, ActorRole: enums.UserRoleSuperAdmin,
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestDelete(t *testing.T) {
	svc, repo := newTestService(t)
	superAdmin := uuid.New()

	user := &models.User{ID: uuid.New(), Username: "admin2", Role: enums.UserRoleAdmin}
	repo.users[user.ID] = user

	if err := svc.Delete(context.Background(), superAdmin, enums.UserRoleSuperAdmin, user.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok := repo.users[user.ID]; ok {
		t.Fatal("user still present")
	}

	err := svc.Delete(context.Background(), superAdmin, enums.UserRoleSuperAdmin, superAdmin)
	expectCode(t, err, pkgerrors.CodeValidation)

	err = svc.Delete(context.Background(), superAdmin, enums.UserRoleSuperAdmin, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestCounts(t *testing.T) {
	svc, repo := newTestService(t)
	for _, role := range []enums.UserRole{
		enums.UserRoleFarmer, enums.UserRoleFarmer, enums.UserRoleAdmin,
		enums.UserRoleDistributor, enums.UserRoleSuperAdmin,
	} {
		id := uuid.New()
		repo.users[id] = &models.User{ID: id, Role: role}
	}

	counts, err := svc.Counts(context.Background(), enums.UserRoleSuperAdmin)
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	if counts.Petani != 2 || counts.Admin != 1 || counts.Distributor != 1 || counts.SuperAdmin != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	if counts.Total != 5 {
		t.Fatalf("expected total 5, got %d", counts.Total)
	}
}
