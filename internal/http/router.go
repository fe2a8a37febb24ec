package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lampoon-ads/backend/internal/config"
	"github.com/lampoon-ads/backend/internal/http/handlers"
	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth           *handlers.AuthHandler
	User           *handlers.UserHandler
	Register       *handlers.RegisterHandler
	Contracts      *handlers.ContractsHandler
	Advertisers    *handlers.AdvertiserHandler
	Adverts        *handlers.AdvertHandler
	Issues         *handlers.IssueHandler
	Correspondence *handlers.CorrespondenceHandler
	Dashboard      *handlers.DashboardHandler
	Feed           *handlers.FeedHub
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	users middleware.UserLoader,
	profiles middleware.ProfileLoader,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(m.Middleware())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Static("/media", cfg.MediaDir)

	api := app.Group("/api/v1")

	// Auth (public, rate limited)
	limited := api.Group("/auth", middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute, log))
	limited.Post("/signup", h.Auth.Signup)
	limited.Post("/login", h.Auth.Login)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret, users, log))

	// User
	protected.Get("/me", h.User.GetMe)
	protected.Post("/me/password", h.User.ChangePassword)

	// Advertiser profile form
	protected.Get("/register", h.Register.Get)
	protected.Post("/register", h.Register.Post)

	// Contracts (approved advertisers only)
	contracts := protected.Group("/contracts", middleware.RegistrationGate(profiles, log))
	contracts.Get("", h.Contracts.List)
	contracts.Post("/advert", h.Contracts.Create)
	contracts.Get("/advert/:id", h.Contracts.Get)
	contracts.Post("/advert/:id/update", h.Contracts.Update)

	// Staff admin
	admin := protected.Group("/admin", middleware.StaffMiddleware())

	admin.Get("/dashboard", h.Dashboard.Get)
	admin.Get("/staff", h.User.Staff)

	meta := handlers.NewMetaHandler()
	admin.Get("/meta/sizes", meta.GetSizes)
	admin.Get("/meta/states", meta.GetStates)
	admin.Get("/meta/gate", meta.GetGateStages)

	admin.Get("/advertisers", h.Advertisers.List)
	admin.Post("/advertisers", h.Advertisers.Create)
	admin.Post("/advertisers/approve", h.Advertisers.Approve)
	admin.Post("/advertisers/unapprove", h.Advertisers.Unapprove)
	admin.Get("/advertisers/:id", h.Advertisers.Get)
	admin.Put("/advertisers/:id", h.Advertisers.Update)
	admin.Delete("/advertisers/:id", h.Advertisers.Delete)

	admin.Get("/adverts", h.Adverts.List)
	admin.Post("/adverts", h.Adverts.Create)
	admin.Post("/adverts/upload", h.Adverts.Upload)
	admin.Get("/adverts/:id", h.Adverts.Get)
	admin.Put("/adverts/:id", h.Adverts.Update)
	admin.Delete("/adverts/:id", h.Adverts.Delete)

	admin.Get("/issues", h.Issues.List)
	admin.Post("/issues", h.Issues.Create)
	admin.Get("/issues/:id", h.Issues.Get)
	admin.Put("/issues/:id", h.Issues.Update)
	admin.Delete("/issues/:id", h.Issues.Delete)

	admin.Get("/correspondence", h.Correspondence.List)
	admin.Post("/correspondence", h.Correspondence.Create)
	admin.Get("/correspondence/:id", h.Correspondence.Get)
	admin.Patch("/correspondence/:id", h.Correspondence.SetReceptive)
	admin.Delete("/correspondence/:id", h.Correspondence.Delete)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws/feed", websocket.New(h.Feed.HandleWS))
}
