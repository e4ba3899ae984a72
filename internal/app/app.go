// Package app assembles the user and ticket services from configuration and
// runs them until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/client"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

// Service is one runnable helpdesk service.
type Service struct {
	cfg      *config.Config
	logger   *zap.Logger
	server   *fiber.App
	postgres *persistence.Postgres
	redis    *persistence.Redis
	notifier *worker.NotificationWorker
}

// infra holds what both services share: storage handles, metrics and the
// event pipeline.
type infra struct {
	postgres   *persistence.Postgres
	redis      *persistence.Redis
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	notifier   *worker.NotificationWorker
}

// NewUserService wires the user service. Without POSTGRES_DSN users live in
// memory.
func NewUserService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	base, err := newInfra(ctx, cfg, logger, persistence.UsersSchema)
	if err != nil {
		return nil, err
	}

	var users repository.UserRepository
	if pool := base.postgres.PoolHandle(); pool != nil {
		users = repository.NewUserRepository(pool)
	} else {
		users = repository.NewMemoryUserRepository()
	}

	tickets, err := client.NewTicketClient(client.Config{
		BaseURL: cfg.Peers.TicketServiceURL,
		Timeout: cfg.Peers.Timeout(),
		Metrics: base.metrics,
		Logger:  logger,
	})
	if err != nil {
		base.close()
		return nil, err
	}

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   users,
		Tickets:    tickets,
		Dispatcher: base.dispatcher,
		Logger:     logger,
	})

	return base.build(cfg, logger, httptransport.RouteConfig{
		Users: handlers.NewUsersHandler(userService),
	}), nil
}

// NewTicketService wires the ticket service. Without POSTGRES_DSN tickets live
// in memory.
func NewTicketService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	base, err := newInfra(ctx, cfg, logger, persistence.TicketsSchema)
	if err != nil {
		return nil, err
	}

	var tickets repository.TicketRepository
	if pool := base.postgres.PoolHandle(); pool != nil {
		tickets = repository.NewTicketRepository(pool)
	} else {
		tickets = repository.NewMemoryTicketRepository()
	}

	users, err := client.NewUserClient(client.Config{
		BaseURL: cfg.Peers.UserServiceURL,
		Timeout: cfg.Peers.Timeout(),
		Metrics: base.metrics,
		Logger:  logger,
	})
	if err != nil {
		base.close()
		return nil, err
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		Users:      users,
		Dispatcher: base.dispatcher,
		Logger:     logger,
	})

	return base.build(cfg, logger, httptransport.RouteConfig{
		Tickets: handlers.NewTicketsHandler(ticketService),
	}), nil
}

func newInfra(ctx context.Context, cfg *config.Config, logger *zap.Logger, schema persistence.Schema) (*infra, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), schema, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	notifier := worker.NewNotificationWorker(redis, 0, logger)
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Publisher:  notifier,
		Channel:    cfg.Redis.EventsChannel,
		Service:    cfg.App.Name,
		Logger:     logger,
	}))

	return &infra{
		postgres:   pg,
		redis:      redis,
		metrics:    observability.NewMetrics(metricsNamespace(cfg.App.Name)),
		dispatcher: dispatcher,
		notifier:   notifier,
	}, nil
}

func (b *infra) build(cfg *config.Config, logger *zap.Logger, routes httptransport.RouteConfig) *Service {
	server := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(server, logger, b.metrics, cfg.App.RequestTimeout())

	routes.Health = handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, b.postgres, b.redis)
	routes.Metrics = b.metrics
	httptransport.RegisterRoutes(server, routes)

	return &Service{
		cfg:      cfg,
		logger:   logger,
		server:   server,
		postgres: b.postgres,
		redis:    b.redis,
		notifier: b.notifier,
	}
}

func (b *infra) close() {
	b.redis.Close()
	b.postgres.Close()
}

// App exposes the HTTP application, mainly for in-process tests.
func (s *Service) App() *fiber.App {
	return s.server
}

// Run listens on the configured address until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.App.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.App.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled, then shuts the server
// down and releases storage.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	defer s.close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.notifier.Run(ctx)
	})

	g.Go(func() error {
		s.logger.Info("http server listening",
			zap.String("service", s.cfg.App.Name),
			zap.String("addr", ln.Addr().String()))
		if err := s.server.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down", zap.String("service", s.cfg.App.Name))
		return s.server.Shutdown()
	})

	return g.Wait()
}

func (s *Service) close() {
	s.redis.Close()
	s.postgres.Close()
}

var namespaceReplacer = strings.NewReplacer("-", "_", ".", "_", " ", "_")

func metricsNamespace(name string) string {
	return namespaceReplacer.Replace(name)
}
