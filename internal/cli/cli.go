// Package cli builds the cobra command tree shared by both service binaries.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/app"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// Builder constructs a runnable service from configuration.
type Builder func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app.Service, error)

// Definition describes one binary.
type Definition struct {
	Use      string
	Short    string
	Defaults config.Defaults
	Schema   persistence.Schema
	Build    Builder
}

var (
	// UserService is the user-service binary.
	UserService = Definition{
		Use:      "user-service",
		Short:    "Helpdesk user API: customers, executives and their tickets",
		Defaults: config.UserServiceDefaults,
		Schema:   persistence.UsersSchema,
		Build:    app.NewUserService,
	}
	// TicketService is the ticket-service binary.
	TicketService = Definition{
		Use:      "ticket-service",
		Short:    "Helpdesk ticket API: raise, assign and close tickets",
		Defaults: config.TicketServiceDefaults,
		Schema:   persistence.TicketsSchema,
		Build:    app.NewTicketService,
	}
)

// NewRootCommand returns the command tree for def. The root command serves HTTP.
func NewRootCommand(def Definition) *cobra.Command {
	root := &cobra.Command{
		Use:          def.Use,
		Short:        def.Short,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), def)
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), def)
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), def, persistence.RunMigrations)
		},
	}, &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), def, persistence.RollbackMigration)
		},
	})

	root.AddCommand(serve, migrate)
	return root
}

// Execute runs the binary described by def and returns the process exit code.
func Execute(def Definition) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand(def).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func setup(def Definition) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(def.Defaults)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

func runServe(ctx context.Context, def Definition) error {
	cfg, logger, err := setup(def)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	svc, err := def.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return err
	}
	if err := svc.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

type migration func(ctx context.Context, pool *pgxpool.Pool, schema persistence.Schema, logger *zap.Logger) error

func runMigrate(ctx context.Context, def Definition, apply migration) error {
	cfg, logger, err := setup(def)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("migrate: POSTGRES_DSN is required")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer pg.Close()

	if err := apply(ctx, pg.PoolHandle(), def.Schema, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
