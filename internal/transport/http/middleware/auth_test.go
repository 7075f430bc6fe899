package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/infra/security"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

const testCookieName = "session"

func newAuthority(t *testing.T) *security.TokenAuthority {
	t.Helper()

	authority, err := security.NewTokenAuthority(security.TokenAuthorityOptions{
		Secret: "0123456789abcdef0123456789abcdef",
		Issuer: "railway-registry",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenAuthority: %v", err)
	}
	return authority
}

func newAuthRouter(t *testing.T, authority *security.TokenAuthority) *gin.Engine {
	t.Helper()

	auth := usecase.NewAuthService(nil, authority, nil, zaptest.NewLogger(t))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(auth, testCookieName))
	r.GET("/whoami", func(c *gin.Context) {
		principal := PrincipalFrom(c)
		status := http.StatusOK
		if err := AuthErrorFrom(c); err != nil {
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				status = http.StatusUnauthorized
			default:
				status = http.StatusBadRequest
			}
		}
		c.JSON(status, gin.H{"id": principal.ID, "roles": domain.RoleNames(principal.Roles)})
	})

	return r
}

func TestAuthenticateResolvesBearerToken(t *testing.T) {
	authority := newAuthority(t)
	r := newAuthRouter(t, authority)

	token, _, err := authority.Issue("user-1", []string{"USER"}, "alice@example.com", security.IssueOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAuthenticateResolvesSessionCookie(t *testing.T) {
	authority := newAuthority(t)
	r := newAuthRouter(t, authority)

	token, _, err := authority.Issue("user-1", []string{"USER"}, "alice@example.com", security.IssueOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAuthenticateLeavesAnonymousWithoutCredential(t *testing.T) {
	r := newAuthRouter(t, newAuthority(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	// No credential is not an error, just anonymous.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAuthenticateRecordsExpiredCredential(t *testing.T) {
	authority := newAuthority(t)

	past := time.Now().UTC().Add(-48 * time.Hour)
	token, _, err := authority.WithClock(func() time.Time { return past }).
		Issue("user-1", []string{"USER"}, "alice@example.com", security.IssueOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	authority.WithClock(time.Now)

	r := newAuthRouter(t, authority)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired credential: status = %d, want 401", w.Code)
	}
}

func TestAuthenticateRecordsMalformedCredential(t *testing.T) {
	r := newAuthRouter(t, newAuthority(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed credential: status = %d, want 400", w.Code)
	}
}
