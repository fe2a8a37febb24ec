package main

import (
	"context"
	"os"

	"github.com/lampoon-ads/backend/internal/config"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	if err := newRootCmd(log).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "manage",
		Short:         "Administrative tasks for the ad contracts backend",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(log), newCreateSuperuserCmd(log))
	return root
}

func newMigrateCmd(log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			return db.RunMigrations(ctx, pool, log)
		},
	}
}

func newCreateSuperuserCmd(log *zap.Logger) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a superuser, or promote an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.RunMigrations(ctx, pool, log); err != nil {
				return err
			}

			accounts := services.NewAccountService(repositories.NewUserRepo(pool), services.NewLifecycle(repositories.NewAuditRepo(pool), nil, nil, log), cfg.JWTSecret, cfg.JWTExpiration, log)
			user, created, err := accounts.EnsureSuperuser(ctx, email, password)
			if err != nil {
				return err
			}
			cmd.Printf("superuser %s ready (created=%t, id=%s)\n", user.Email, created, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "superuser email")
	cmd.Flags().StringVar(&password, "password", "", "superuser password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

