package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/infra/config"
	"github.com/yakubikk/railway-registry/internal/transport/http/handlers"
	"github.com/yakubikk/railway-registry/internal/transport/http/middleware"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Access        *usecase.AccessService
	Wagons        *usecase.WagonService
	Manufacturers *usecase.ManufacturerService
	Users         *usecase.UserService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Metrics  *middleware.HTTPMetrics
	Services ServiceSet
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Page prefixes guarded by the page gate. Each one has a matching policy
// entry seeded below; longest prefix wins at match time.
var pagePrefixes = []string{"/", "/admin", "/moderator"}

// Public page paths reachable without a session. An authenticated visitor is
// redirected home instead. The unauthorized page is handled inside the gate
// and stays reachable for everyone.
var publicPagePaths = []string{"/login", "/register"}

// SeedPolicies populates the single policy table consumed by both the API
// gate and the page gate. This is the complete authority on who may do what;
// no role check lives anywhere else.
func SeedPolicies(policy *usecase.PolicyRegistry) {
	allRoles := []domain.Role{domain.RoleUser, domain.RoleModerator, domain.RoleAdmin}

	policy.
		Register(domain.ResourceWagon, domain.ActionRead, allRoles...).
		Register(domain.ResourceWagon, domain.ActionCreate, domain.RoleAdmin).
		Register(domain.ResourceWagon, domain.ActionUpdate, domain.RoleAdmin).
		Register(domain.ResourceWagon, domain.ActionDelete, domain.RoleAdmin).
		Register(domain.ResourceWagon, domain.ActionManage, domain.RoleAdmin)

	policy.
		Register(domain.ResourceManufacturer, domain.ActionRead, allRoles...).
		Register(domain.ResourceManufacturer, domain.ActionCreate, domain.RoleAdmin).
		Register(domain.ResourceManufacturer, domain.ActionUpdate, domain.RoleAdmin).
		Register(domain.ResourceManufacturer, domain.ActionDelete, domain.RoleAdmin)

	policy.
		Register(domain.ResourceUser, domain.ActionRead, allRoles...).
		Register(domain.ResourceUser, domain.ActionUpdate, domain.RoleAdmin, domain.RoleModerator).
		Register(domain.ResourceUser, domain.ActionDelete, domain.RoleAdmin, domain.RoleModerator)

	policy.
		Register(domain.PageResource("/"), domain.ActionRead, allRoles...).
		Register(domain.PageResource("/admin"), domain.ActionRead, domain.RoleAdmin).
		Register(domain.PageResource("/moderator"), domain.ActionRead, domain.RoleModerator, domain.RoleAdmin)
}

// RequiredPolicies lists every (resource, action) pair the routes below
// consult. Startup validation fails fast when the seeded table misses one.
func RequiredPolicies() map[domain.ResourceType][]domain.Action {
	return map[domain.ResourceType][]domain.Action{
		domain.ResourceWagon: {
			domain.ActionRead, domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete,
		},
		domain.ResourceManufacturer: {
			domain.ActionRead, domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete,
		},
		domain.ResourceUser: {
			domain.ActionRead, domain.ActionUpdate, domain.ActionDelete,
		},
		domain.PageResource("/"):          {domain.ActionRead},
		domain.PageResource("/admin"):     {domain.ActionRead},
		domain.PageResource("/moderator"): {domain.ActionRead},
	}
}

// Register configures the Gin engine with routes and middleware. Every
// guarded route names its resource and action here, at registration time;
// nothing about authorization is inferred at request time.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.Metrics.Handler())
	r.Use(middleware.Authenticate(deps.Services.Auth, deps.Config.Session.CookieName))

	gate := middleware.NewAccessGate(deps.Services.Access, deps.Metrics)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Config.Session)
		authHandler.RegisterRoutes(api.Group("/auth"))

		wagonHandler := handlers.NewWagonHandler(deps.Services.Wagons)
		wagonGroup := api.Group("/wagons")
		wagonGroup.GET("", gate.Require(domain.ResourceWagon, domain.ActionRead), wagonHandler.List)
		wagonGroup.GET("/:id", gate.RequireOwned(domain.ResourceWagon, domain.ActionRead, "id"), wagonHandler.Get)
		wagonGroup.POST("", gate.Require(domain.ResourceWagon, domain.ActionCreate), wagonHandler.Create)
		wagonGroup.PUT("/:id", gate.RequireOwned(domain.ResourceWagon, domain.ActionUpdate, "id"), wagonHandler.Update)
		wagonGroup.DELETE("/:id", gate.RequireOwned(domain.ResourceWagon, domain.ActionDelete, "id"), wagonHandler.Delete)

		manufacturerHandler := handlers.NewManufacturerHandler(deps.Services.Manufacturers)
		manufacturerGroup := api.Group("/manufacturers")
		manufacturerGroup.GET("", gate.Require(domain.ResourceManufacturer, domain.ActionRead), manufacturerHandler.List)
		manufacturerGroup.GET("/:id", gate.RequireOwned(domain.ResourceManufacturer, domain.ActionRead, "id"), manufacturerHandler.Get)
		manufacturerGroup.POST("", gate.Require(domain.ResourceManufacturer, domain.ActionCreate), manufacturerHandler.Create)
		manufacturerGroup.PUT("/:id", gate.RequireOwned(domain.ResourceManufacturer, domain.ActionUpdate, "id"), manufacturerHandler.Update)
		manufacturerGroup.DELETE("/:id", gate.RequireOwned(domain.ResourceManufacturer, domain.ActionDelete, "id"), manufacturerHandler.Delete)

		// The user registry has no ownership concept, so every route uses the
		// role-only gate even when an id is present.
		userHandler := handlers.NewUserHandler(deps.Services.Users)
		userGroup := api.Group("/users")
		userGroup.GET("", gate.Require(domain.ResourceUser, domain.ActionRead), userHandler.List)
		userGroup.GET("/:id", gate.Require(domain.ResourceUser, domain.ActionRead), userHandler.Get)
		userGroup.PUT("/:id", gate.Require(domain.ResourceUser, domain.ActionUpdate), userHandler.Update)
		userGroup.DELETE("/:id", gate.Require(domain.ResourceUser, domain.ActionDelete), userHandler.Delete)
	}

	pageGate := middleware.NewPageGate(deps.Services.Access, deps.Metrics, middleware.DefaultPageGatePaths(), pagePrefixes, publicPagePaths)
	pagesHandler := handlers.NewPagesHandler()

	pages := r.Group("", pageGate.Handler())
	pages.GET("/", pagesHandler.Home)
	pages.GET("/admin", pagesHandler.Admin)
	pages.GET("/moderator", pagesHandler.Moderator)
	pages.GET("/login", pagesHandler.Login)
	pages.GET("/register", pagesHandler.Register)
	pages.GET("/unauthorized", pagesHandler.Unauthorized)

	return r
}
