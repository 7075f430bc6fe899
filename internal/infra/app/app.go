package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/infra/config"
	"github.com/yakubikk/railway-registry/internal/infra/database"
	"github.com/yakubikk/railway-registry/internal/infra/logger"
	redisinfra "github.com/yakubikk/railway-registry/internal/infra/redis"
	"github.com/yakubikk/railway-registry/internal/infra/security"
	postgresrepo "github.com/yakubikk/railway-registry/internal/repository/postgres"
	redisrepo "github.com/yakubikk/railway-registry/internal/repository/redis"
	"github.com/yakubikk/railway-registry/internal/transport/http/middleware"
	"github.com/yakubikk/railway-registry/internal/transport/http/routes"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	tokenAuthority, err := security.NewTokenAuthority(security.TokenAuthorityOptions{
		Secret:        cfg.Session.Secret,
		Issuer:        cfg.App.Name,
		TTL:           cfg.Session.TTL,
		RememberMeTTL: cfg.Session.RememberMeTTL,
		ClockSkew:     cfg.Session.ClockSkew,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token authority: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	denylist := redisrepo.NewDenylistRepository(redisClient.Client(), cfg.Redis.DenylistPrefix)

	// One policy table, one decision engine. Every enforcement point below
	// consults these two objects; validation fails the boot when a consulted
	// pair is missing an entry.
	policy := usecase.NewPolicyRegistry()
	routes.SeedPolicies(policy)
	if err := policy.Validate(routes.RequiredPolicies()); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("validate policies: %w", err)
	}

	wagonService := usecase.NewWagonService(repos.Wagons)
	manufacturerService := usecase.NewManufacturerService(repos.Manufacturers)
	userService := usecase.NewUserService(repos.Users)

	ownership := usecase.NewOwnershipResolver().
		RegisterOwnerLookup(domain.ResourceWagon, wagonService.OwnerLookup()).
		RegisterOwnerLookup(domain.ResourceManufacturer, manufacturerService.OwnerLookup())

	accessService := usecase.NewAccessService(policy, ownership, log)
	authService := usecase.NewAuthService(repos.Users, tokenAuthority, denylist, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Access:        accessService,
			Wagons:        wagonService,
			Manufacturers: manufacturerService,
			Users:         userService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting railway registry API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
