package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/infra/config"
	"github.com/yakubikk/railway-registry/internal/infra/security"
	"github.com/yakubikk/railway-registry/internal/transport/http/middleware"
	httproutes "github.com/yakubikk/railway-registry/internal/transport/http/routes"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

func newTestEngine(t *testing.T) (*gin.Engine, *security.TokenAuthority) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		App:     config.AppSettings{Env: "test", Name: "railway-registry"},
		Session: config.SessionSettings{CookieName: "session", TTL: time.Hour, RememberMeTTL: 24 * time.Hour},
	}

	authority, err := security.NewTokenAuthority(security.TokenAuthorityOptions{
		Secret: "0123456789abcdef0123456789abcdef",
		Issuer: cfg.App.Name,
		TTL:    cfg.Session.TTL,
	})
	if err != nil {
		t.Fatalf("NewTokenAuthority: %v", err)
	}

	policy := usecase.NewPolicyRegistry()
	httproutes.SeedPolicies(policy)
	if err := policy.Validate(httproutes.RequiredPolicies()); err != nil {
		t.Fatalf("seeded policies incomplete: %v", err)
	}

	log := zaptest.NewLogger(t)
	access := usecase.NewAccessService(policy, usecase.NewOwnershipResolver(), log)
	auth := usecase.NewAuthService(nil, authority, nil, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	engine := httproutes.Register(httproutes.Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
		Services: httproutes.ServiceSet{
			Auth:   auth,
			Access: access,
		},
	})

	return engine, authority
}

func TestSeededPoliciesCoverEveryConsultedPair(t *testing.T) {
	policy := usecase.NewPolicyRegistry()
	httproutes.SeedPolicies(policy)

	if err := policy.Validate(httproutes.RequiredPolicies()); err != nil {
		t.Fatalf("policy table incomplete: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestAPIRoutesRejectAnonymous(t *testing.T) {
	engine, _ := newTestEngine(t)

	for _, path := range []string{"/api/v1/wagons", "/api/v1/manufacturers", "/api/v1/users"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", path, w.Code)
		}
	}
}

func TestPagesRedirectAnonymousToLogin(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q, want /login", loc)
	}
}

func TestAdminPageRequiresAdminRole(t *testing.T) {
	engine, authority := newTestEngine(t)

	userToken, _, err := authority.Issue("u-1", []string{string(domain.RoleUser)}, "user@example.com", security.IssueOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	adminToken, _, err := authority.Issue("a-1", []string{string(domain.RoleAdmin)}, "admin@example.com", security.IssueOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: userToken})
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/unauthorized" {
		t.Fatalf("USER on /admin: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: adminToken})
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ADMIN on /admin: status = %d, want 200", w.Code)
	}
}

func TestAuthenticatedVisitorBouncedFromLogin(t *testing.T) {
	engine, authority := newTestEngine(t)

	token, _, err := authority.Issue("u-1", []string{string(domain.RoleUser)}, "user@example.com", security.IssueOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q, want 302 /", w.Code, w.Header().Get("Location"))
	}
}
