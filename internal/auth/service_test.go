package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/wicaksonohadi/sipupuk-backend/pkg/auth"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/auth/session"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/security"
)

type stubUserRepository struct {
	byUsername map[string]*models.User
	lastLogin  map[uuid.UUID]time.Time
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		byUsername: map[string]*models.User{},
		lastLogin:  map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := s.byUsername[username]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

type stubSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.sessions[newID] = token
	return newID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.sessions, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "sipupuk", ExpirationMinutes: 30}
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

func seedUser(t *testing.T, repo *stubUserRepository, username, password string, role enums.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	repo.byUsername[username] = user
	return user
}

func newTestService(t *testing.T) (Service, *stubUserRepository, *stubSessionManager) {
	t.Helper()
	repo := newStubUserRepository()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo, sessions
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestLogin(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	user := seedUser(t, repo, "budi", "rahasia-123", enums.UserRoleFarmer, true)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "Budi", Password: "rahasia-123"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected user in response: %+v", resp.User)
	}
	if _, ok := repo.lastLogin[user.ID]; !ok {
		t.Fatal("last login not recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Role != enums.UserRoleFarmer || claims.Username != "budi" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, ok := sessions.sessions[claims.ID]; !ok {
		t.Fatal("refresh session not stored under jti")
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(t, repo, "budi", "rahasia-123", enums.UserRoleFarmer, true)
	seedUser(t, repo, "nonaktif", "rahasia-123", enums.UserRoleAdmin, false)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "siapa", "rahasia-123"},
		{"wrong password", "budi", "salah"},
		{"inactive user", "nonaktif", "rahasia-123"},
		{"empty username", "", "rahasia-123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), LoginRequest{Username: tc.username, Password: tc.password})
			expectCode(t, err, pkgerrors.CodeUnauthorized)
		})
	}
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	seedUser(t, repo, "budi", "rahasia-123", enums.UserRoleFarmer, true)

	login, err := svc.Login(context.Background(), LoginRequest{Username: "budi", Password: "rahasia-123"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("access token not rotated")
	}

	// The old pair is dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	if len(sessions.sessions) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.sessions))
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogout(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	seedUser(t, repo, "budi", "rahasia-123", enums.UserRoleFarmer, true)

	login, err := svc.Login(context.Background(), LoginRequest{Username: "budi", Password: "rahasia-123"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, ok := sessions.sessions[claims.ID]; ok {
		t.Fatal("session still live after logout")
	}

	err = svc.Logout(context.Background(), " ")
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}
