package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lampoon-ads/backend/internal/config"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/notify"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Mailer drains the notification queue filled by the API when
// NOTIFY_MODE=queue.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	m := metrics.New(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	renderer, err := notify.NewRenderer(cfg.SiteName)
	if err != nil {
		log.Fatal("failed to load mail templates", zap.Error(err))
	}
	transport := notify.NewTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, log)
	mailer := notify.NewMailer(renderer, transport, repositories.NewCorrespondenceRepo(pool), cfg.MailFrom, m, log)
	queue := notify.NewQueue(rdb, m, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down mailer")
		cancel()
	}()

	log.Info("mailer started")
	if err := queue.Consume(ctx, mailer); err != nil {
		log.Fatal("mailer stopped", zap.Error(err))
	}
}
