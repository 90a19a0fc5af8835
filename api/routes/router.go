package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wicaksonohadi/sipupuk-backend/api/controllers"
	"github.com/wicaksonohadi/sipupuk-backend/api/middleware"
	authsvc "github.com/wicaksonohadi/sipupuk-backend/internal/auth"
	eventsvc "github.com/wicaksonohadi/sipupuk-backend/internal/events"
	farmersvc "github.com/wicaksonohadi/sipupuk-backend/internal/farmers"
	harvestsvc "github.com/wicaksonohadi/sipupuk-backend/internal/harvests"
	reportsvc "github.com/wicaksonohadi/sipupuk-backend/internal/reports"
	requestsvc "github.com/wicaksonohadi/sipupuk-backend/internal/requests"
	stocksvc "github.com/wicaksonohadi/sipupuk-backend/internal/stock"
	usersvc "github.com/wicaksonohadi/sipupuk-backend/internal/users"
	verificationsvc "github.com/wicaksonohadi/sipupuk-backend/internal/verifications"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/auth/session"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/metrics"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Session session.AccessSessionChecker

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth          authsvc.Service
	Register      authsvc.RegisterService
	Users         usersvc.Service
	Farmers       farmersvc.Service
	Harvests      harvestsvc.Service
	Stock         stocksvc.Service
	Requests      requestsvc.Service
	Events        eventsvc.Service
	Verifications verificationsvc.Service
	Reports       reportsvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, p.Redis, logg),
			middleware.Idempotency(p.Redis, logg),
		).Post("/register", controllers.AuthRegister(p.Register, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Session, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/farmer", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleFarmer, logg))

			r.Get("/profile", controllers.GetMyProfile(p.Farmers, logg))
			r.Put("/profile", controllers.UpsertMyProfile(p.Farmers, logg))
			r.Get("/stock", controllers.ListStock(p.Stock, logg))

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", controllers.FarmerCreateRequest(p.Requests, logg))
				r.Get("/", controllers.FarmerListRequests(p.Requests, logg))
				r.Get("/{requestId}", controllers.GetRequest(p.Requests, logg))
				r.Post("/{requestId}/cancel", controllers.FarmerCancelRequest(p.Requests, logg))
			})

			r.Route("/harvests", func(r chi.Router) {
				r.Post("/", controllers.ReportHarvest(p.Harvests, logg))
				r.Get("/", controllers.FarmerListHarvests(p.Harvests, logg))
				r.Get("/{harvestId}", controllers.GetHarvest(p.Harvests, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Route("/stocks", func(r chi.Router) {
				r.Post("/", controllers.CreateStock(p.Stock, logg))
				r.Get("/", controllers.ListStock(p.Stock, logg))
				r.Get("/{stockId}", controllers.GetStock(p.Stock, logg))
				r.Patch("/{stockId}", controllers.UpdateStock(p.Stock, logg))
				r.Post("/{stockId}/adjust", controllers.AdjustStock(p.Stock, logg))
				r.Get("/{stockId}/history", controllers.StockHistory(p.Stock, logg))
				r.Get("/{stockId}/replay", controllers.ReplayStock(p.Stock, logg))
			})

			r.Route("/farmers", func(r chi.Router) {
				r.Get("/", controllers.AdminListFarmers(p.Farmers, logg))
				r.Get("/{userId}", controllers.AdminGetFarmer(p.Farmers, logg))
				r.Post("/{userId}/review", controllers.ReviewFarmer(p.Farmers, logg))
			})

			r.Route("/harvests", func(r chi.Router) {
				r.Get("/", controllers.AdminListHarvests(p.Harvests, logg))
				r.Get("/{harvestId}", controllers.GetHarvest(p.Harvests, logg))
				r.Post("/{harvestId}/review", controllers.ReviewHarvest(p.Farmers, logg))
			})

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", controllers.AdminListRequests(p.Requests, logg))
				r.Get("/{requestId}", controllers.GetRequest(p.Requests, logg))
				r.Post("/{requestId}/approve", controllers.ApproveRequest(p.Requests, logg))
				r.Post("/{requestId}/reject", controllers.RejectRequest(p.Requests, logg))
				r.Post("/{requestId}/schedule", controllers.ScheduleRequest(p.Requests, logg))
				r.Post("/{requestId}/ship", controllers.ShipRequest(p.Requests, logg))
				r.Post("/{requestId}/complete", controllers.CompleteRequest(p.Requests, logg))
				r.Get("/{requestId}/verification", controllers.GetRequestVerification(p.Verifications, logg))
			})

			r.Route("/events", func(r chi.Router) {
				r.Post("/", controllers.CreateEvent(p.Events, logg))
				r.Get("/", controllers.ListEvents(p.Events, logg))
				r.Get("/{eventId}", controllers.GetEvent(p.Events, logg))
				r.Get("/{eventId}/recipients", controllers.EventRecipients(p.Events, logg))
				r.Post("/{eventId}/fulfill", controllers.FulfillEvent(p.Events, logg))
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/recap", controllers.RecapReport(p.Reports, logg))
				r.Get("/recap/export", controllers.RecapExport(p.Reports, logg))
			})
		})

		r.Route("/distributor", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleDistributor, logg))

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", controllers.ListSchedules(p.Requests, logg))
				r.Get("/{requestId}", controllers.GetRequest(p.Requests, logg))
				r.Post("/{requestId}/ship", controllers.ShipRequest(p.Requests, logg))
				r.Post("/{requestId}/complete", controllers.CompleteRequest(p.Requests, logg))
			})

			r.Route("/verifications", func(r chi.Router) {
				r.Post("/", controllers.RecordVerification(p.Verifications, logg))
				r.Get("/", controllers.ListMyVerifications(p.Verifications, logg))
			})
		})

		r.Route("/superadmin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleSuperAdmin, logg))

			r.Route("/users", func(r chi.Router) {
				r.Post("/", controllers.CreateUser(p.Users, logg))
				r.Get("/", controllers.ListUsers(p.Users, logg))
				r.Get("/metrics", controllers.UserCounts(p.Users, logg))
				r.Get("/{userId}", controllers.GetUser(p.Users, logg))
				r.Patch("/{userId}", controllers.UpdateUser(p.Users, logg))
				r.Delete("/{userId}", controllers.DeleteUser(p.Users, logg))
			})
		})
	})

	return r
}
