package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/config"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/events"
	apphttp "github.com/lampoon-ads/backend/internal/http"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/http/handlers"
	"github.com/lampoon-ads/backend/internal/media"
	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/notify"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.MetricsNamespace, reg)

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	advertiserRepo := repositories.NewAdvertiserRepo(pool)
	advertRepo := repositories.NewAdvertRepo(pool)
	issueRepo := repositories.NewIssueRepo(pool)
	correspondenceRepo := repositories.NewCorrespondenceRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	txManager := db.NewTxManager(pool)

	// Notifications
	renderer, err := notify.NewRenderer(cfg.SiteName)
	if err != nil {
		log.Fatal("failed to load mail templates", zap.Error(err))
	}
	transport := notify.NewTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, log)
	mailer := notify.NewMailer(renderer, transport, correspondenceRepo, cfg.MailFrom, m, log)

	var dispatcher notify.Dispatcher = notify.NewSyncDispatcher(mailer)
	if cfg.NotifyMode == config.NotifyQueue {
		dispatcher = notify.NewQueue(rdb, m, log)
	}
	log.Info("notifications configured", zap.String("mode", cfg.NotifyMode), zap.String("paid_policy", string(cfg.PaidUpdatePolicy)))

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	lifecycle := services.NewLifecycle(auditRepo, publisher, dispatcher, log)
	accountService := services.NewAccountService(userRepo, lifecycle, cfg.JWTSecret, cfg.JWTExpiration, log)
	advertiserService := services.NewAdvertiserService(txManager, advertiserRepo, userRepo, advertRepo, correspondenceRepo, lifecycle, m, log)
	advertService := services.NewAdvertService(txManager, advertRepo, advertiserRepo, issueRepo, lifecycle, cfg.PaidUpdatePolicy, log)
	issueService := services.NewIssueService(issueRepo, lifecycle, log)
	correspondenceService := services.NewCorrespondenceService(correspondenceRepo, advertiserRepo, lifecycle, log)
	dashboardService := services.NewDashboardService(advertiserRepo, advertRepo, issueRepo, userRepo, auditRepo)

	// Handlers
	store := media.NewStore(cfg.MediaDir, cfg.MediaMaxBytes)
	feed := handlers.NewFeedHub(cfg.JWTSecret, accountService, subscriber, log)
	h := apphttp.Handlers{
		Auth:           handlers.NewAuthHandler(accountService, log),
		User:           handlers.NewUserHandler(accountService, log),
		Register:       handlers.NewRegisterHandler(advertiserService, log),
		Contracts:      handlers.NewContractsHandler(advertService, store, log),
		Advertisers:    handlers.NewAdvertiserHandler(advertiserService, log),
		Adverts:        handlers.NewAdvertHandler(advertService, store, log),
		Issues:         handlers.NewIssueHandler(issueService, log),
		Correspondence: handlers.NewCorrespondenceHandler(correspondenceService, log),
		Dashboard:      handlers.NewDashboardHandler(dashboardService, log),
		Feed:           feed,
	}

	// Start feed hub
	feed.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.MediaMaxBytes + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: middleware.RequestID(c)})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, m, reg, accountService, advertiserService, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
