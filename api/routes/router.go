package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boosthq/boosthq-backend/api/controllers"
	"github.com/boosthq/boosthq-backend/api/middleware"
	"github.com/boosthq/boosthq-backend/internal/analytics"
	"github.com/boosthq/boosthq-backend/internal/campaigns"
	"github.com/boosthq/boosthq-backend/internal/eldorado"
	"github.com/boosthq/boosthq-backend/internal/fruits"
	"github.com/boosthq/boosthq-backend/internal/orders"
	"github.com/boosthq/boosthq-backend/internal/users"
	"github.com/boosthq/boosthq-backend/pkg/config"
	"github.com/boosthq/boosthq-backend/pkg/db"
	"github.com/boosthq/boosthq-backend/pkg/enums"
	"github.com/boosthq/boosthq-backend/pkg/logger"
	"github.com/boosthq/boosthq-backend/pkg/metrics"
	pkgredis "github.com/boosthq/boosthq-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	usersService users.Service,
	ordersService orders.Service,
	fruitsService fruits.Service,
	eldoradoService eldorado.Service,
	campaignsService campaigns.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	adminOnly := middleware.RequireRole(string(enums.RoleAdmin), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/fruits", controllers.FruitWebhook(fruitsService, redisClient, cfg.Webhook, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(usersService, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(usersService, logg))
			r.Get("/me", controllers.AuthMe(usersService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.UserList(usersService, logg))
			r.Post("/", controllers.UserCreate(usersService, logg))
			r.Delete("/{userId}", controllers.UserDelete(usersService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Post("/", controllers.OrderCreate(ordersService, logg))
			r.Get("/accounts", controllers.OrderAccounts(ordersService, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(ordersService, logg))
				r.Get("/history", controllers.OrderHistory(ordersService, logg))
				r.Post("/claim", controllers.OrderClaim(ordersService, logg))
				r.Patch("/", controllers.OrderUpdate(ordersService, logg))
				r.Post("/complete", controllers.OrderComplete(ordersService, logg))
			})
		})

		r.Route("/fruits", func(r chi.Router) {
			r.Get("/", controllers.FruitList(fruitsService, logg))
			r.With(adminOnly).Post("/", controllers.FruitUpsert(fruitsService, logg))
			r.Post("/reserve", controllers.FruitReserve(fruitsService, logg))
			r.Route("/{fruitId}", func(r chi.Router) {
				r.With(adminOnly).Patch("/stock", controllers.FruitStockAdjust(fruitsService, logg))
				r.Get("/events", controllers.FruitEvents(fruitsService, logg))
			})
		})

		r.Route("/eldorado", func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/import", controllers.EldoradoImport(eldoradoService, logg))
			r.Get("/pending", controllers.EldoradoPending(eldoradoService, logg))
			r.Post("/convert/{eldoradoId}", controllers.EldoradoConvert(eldoradoService, logg))
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", controllers.CampaignList(campaignsService, logg))
			r.With(adminOnly).Post("/", controllers.CampaignCreate(campaignsService, logg))
			r.With(adminOnly).Patch("/{campaignId}/toggle", controllers.CampaignToggle(campaignsService, logg))
			r.With(adminOnly).Delete("/{campaignId}", controllers.CampaignDelete(campaignsService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.With(adminOnly).Get("/daily", controllers.AnalyticsDaily(analyticsService, logg))
			r.With(adminOnly).Get("/weekly", controllers.AnalyticsWeekly(analyticsService, logg))
			r.With(adminOnly).Get("/workers", controllers.AnalyticsWorkers(analyticsService, logg))
			r.Get("/sessions/{userId}", controllers.WorkerSessions(analyticsService, logg))
		})
	})

	return r
}
