package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/wicaksonohadi/sipupuk-backend/internal/auth"
	eventsvc "github.com/wicaksonohadi/sipupuk-backend/internal/events"
	farmersvc "github.com/wicaksonohadi/sipupuk-backend/internal/farmers"
	harvestsvc "github.com/wicaksonohadi/sipupuk-backend/internal/harvests"
	reportsvc "github.com/wicaksonohadi/sipupuk-backend/internal/reports"
	requestsvc "github.com/wicaksonohadi/sipupuk-backend/internal/requests"
	stocksvc "github.com/wicaksonohadi/sipupuk-backend/internal/stock"
	usersvc "github.com/wicaksonohadi/sipupuk-backend/internal/users"
	verificationsvc "github.com/wicaksonohadi/sipupuk-backend/internal/verifications"
	pkgAuth "github.com/wicaksonohadi/sipupuk-backend/pkg/auth"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/auth/session"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Refresh(ctx context.Context, req authsvc.RefreshRequest) (*authsvc.RefreshResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req authsvc.RegisterRequest) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) Create(ctx context.Context, input usersvc.CreateUserInput) (*usersvc.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) Get(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) (*usersvc.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) List(ctx context.Context, actorRole enums.UserRole, filter usersvc.ListFilter) (*usersvc.UserPage, error) {
	return &usersvc.UserPage{}, nil
}

func (stubUsersService) Update(ctx context.Context, input usersvc.UpdateUserInput) (*usersvc.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubUsersService) Counts(ctx context.Context, actorRole enums.UserRole) (*usersvc.RoleCounts, error) {
	return &usersvc.RoleCounts{}, nil
}

type stubFarmersService struct{}

func (stubFarmersService) UpsertProfile(ctx context.Context, input farmersvc.UpsertProfileInput) (*models.FarmerProfile, error) {
	panic("unimplemented")
}

func (stubFarmersService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error) {
	return &models.FarmerProfile{UserID: userID}, nil
}

func (stubFarmersService) ListProfiles(ctx context.Context, filter farmersvc.ListFilter) (*farmersvc.ProfilePage, error) {
	return &farmersvc.ProfilePage{}, nil
}

func (stubFarmersService) ReviewProfile(ctx context.Context, input farmersvc.ReviewProfileInput) (*models.FarmerProfile, error) {
	panic("unimplemented")
}

func (stubFarmersService) ReviewHarvest(ctx context.Context, input farmersvc.ReviewHarvestInput) (*models.HarvestRecord, error) {
	panic("unimplemented")
}

func (stubFarmersService) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	return true, nil
}

type stubHarvestsService struct{}

func (stubHarvestsService) Report(ctx context.Context, input harvestsvc.ReportInput) (*models.HarvestRecord, error) {
	panic("unimplemented")
}

func (stubHarvestsService) Get(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.HarvestRecord, error) {
	panic("unimplemented")
}

func (stubHarvestsService) List(ctx context.Context, filter harvestsvc.ListFilter) (*harvestsvc.HarvestPage, error) {
	return &harvestsvc.HarvestPage{}, nil
}

type stubStockService struct{}

func (stubStockService) CreateStock(ctx context.Context, input stocksvc.CreateStockInput) (*models.FertilizerStock, error) {
	panic("unimplemented")
}

func (stubStockService) UpdateStock(ctx context.Context, input stocksvc.UpdateStockInput) (*models.FertilizerStock, error) {
	panic("unimplemented")
}

func (stubStockService) GetStock(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error) {
	panic("unimplemented")
}

func (stubStockService) ListStock(ctx context.Context) ([]models.FertilizerStock, error) {
	return nil, nil
}

func (stubStockService) Adjust(ctx context.Context, input stocksvc.AdjustStockInput) (*models.FertilizerStock, error) {
	panic("unimplemented")
}

func (stubStockService) History(ctx context.Context, filter stocksvc.HistoryFilter) (*stocksvc.HistoryPage, error) {
	panic("unimplemented")
}

func (stubStockService) Replay(ctx context.Context, stockID uuid.UUID) (*stocksvc.ReplayResult, error) {
	panic("unimplemented")
}

type stubRequestsService struct{}

func (stubRequestsService) CreateRequest(ctx context.Context, input requestsvc.CreateRequestInput) (*models.FertilizerRequest, error) {
	panic("unimplemented")
}

func (stubRequestsService) ApproveRequest(ctx context.Context, input requestsvc.ApproveRequestInput) (*models.FertilizerRequest, error) {
	panic("unimplemented")
}

func (stubRequestsService) ScheduleRequest(ctx context.Context, input requestsvc.ScheduleRequestInput) (*requestsvc.RequestDetail, error) {
	panic("unimplemented")
}

func (stubRequestsService) ShipRequest(ctx context.Context, input requestsvc.ShipRequestInput) (*models.FertilizerRequest, error) {
	panic("unimplemented")
}

func (stubRequestsService) CompleteRequest(ctx context.Context, input requestsvc.CompleteRequestInput) (*models.FertilizerRequest, error) {
	panic("unimplemented")
}

func (stubRequestsService) RejectRequest(ctx context.Context, input requestsvc.RejectRequestInput) (*models.FertilizerRequest, error) {
	panic("unimplemented")
}

func (stubRequestsService) CancelRequest(ctx context.Context, input requestsvc.CancelRequestInput) (*models.FertilizerRequest, error) {
	panic("unimplemented")
}

func (stubRequestsService) GetRequest(ctx context.Context, id uuid.UUID) (*requestsvc.RequestDetail, error) {
	panic("unimplemented")
}

func (stubRequestsService) ListRequests(ctx context.Context, filter requestsvc.ListFilter) (*requestsvc.RequestPage, error) {
	return &requestsvc.RequestPage{}, nil
}

func (stubRequestsService) ListSchedules(ctx context.Context, filter requestsvc.ScheduleFilter) (*requestsvc.SchedulePage, error) {
	return &requestsvc.SchedulePage{}, nil
}

type stubEventsService struct{}

func (stubEventsService) CreateEvent(ctx context.Context, input eventsvc.CreateEventInput) (*models.DistributionEvent, error) {
	panic("unimplemented")
}

func (stubEventsService) GetEvent(ctx context.Context, id uuid.UUID) (*models.DistributionEvent, error) {
	panic("unimplemented")
}

func (stubEventsService) ListEvents(ctx context.Context, filter eventsvc.ListFilter) (*eventsvc.EventPage, error) {
	return &eventsvc.EventPage{}, nil
}

func (stubEventsService) ListRecipients(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error) {
	panic("unimplemented")
}

func (stubEventsService) Fulfill(ctx context.Context, input eventsvc.FulfillEventInput) (*eventsvc.FulfillResult, error) {
	panic("unimplemented")
}

type stubVerificationsService struct{}

func (stubVerificationsService) Record(ctx context.Context, input verificationsvc.RecordInput) (*models.ReceiptVerification, error) {
	panic("unimplemented")
}

func (stubVerificationsService) GetByRequest(ctx context.Context, requestID uuid.UUID) (*models.ReceiptVerification, error) {
	panic("unimplemented")
}

func (stubVerificationsService) ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]models.ReceiptVerification, error) {
	return nil, nil
}

type stubReportsService struct{}

func (stubReportsService) Recap(ctx context.Context, input reportsvc.RecapInput) (*reportsvc.RecapReport, error) {
	return &reportsvc.RecapReport{}, nil
}

func (stubReportsService) WriteCSV(w io.Writer, report *reportsvc.RecapReport) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:        cfg,
		Logger:        logg,
		DB:            stubPinger{},
		Redis:         (*redis.Client)(nil),
		Session:       stubSessionChecker{},
		Auth:          stubAuthService{},
		Register:      stubRegisterService{},
		Users:         stubUsersService{},
		Farmers:       stubFarmersService{},
		Harvests:      stubHarvestsService{},
		Stock:         stubStockService{},
		Requests:      stubRequestsService{},
		Events:        stubEventsService{},
		Verifications: stubVerificationsService{},
		Reports:       stubReportsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "tester",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/farmer/profile", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestFarmerGroupRequiresFarmerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	staff := httptest.NewRequest(http.MethodGet, "/api/v1/farmer/profile", nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff on farmer surface got %d", resp.Code)
	}

	farmer := httptest.NewRequest(http.MethodGet, "/api/v1/farmer/profile", nil)
	farmer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleFarmer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, farmer)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for farmer profile got %d", resp.Code)
	}
}

func TestAdminGroupAdmitsBothStaffRoles(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	farmer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stocks/", nil)
	farmer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleFarmer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, farmer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for farmer on admin surface got %d", resp.Code)
	}

	for _, role := range []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleSuperAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stocks/", nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, role))
		resp = httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s on admin stocks got %d", role, resp.Code)
		}
	}
}

func TestDistributorGroupRequiresDistributorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/distributor/schedules/", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on distributor surface got %d", resp.Code)
	}

	distributor := httptest.NewRequest(http.MethodGet, "/api/v1/distributor/schedules/", nil)
	distributor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleDistributor))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, distributor)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for distributor schedules got %d", resp.Code)
	}
}

func TestSuperadminGroupRejectsAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/superadmin/users/metrics", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on superadmin surface got %d", resp.Code)
	}

	super := httptest.NewRequest(http.MethodGet, "/api/v1/superadmin/users/metrics", nil)
	super.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleSuperAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, super)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for superadmin metrics got %d", resp.Code)
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}
