package middleware

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

// PageGatePaths names the navigation targets used by the page gate.
type PageGatePaths struct {
	Login        string
	Unauthorized string
	Home         string
}

// DefaultPageGatePaths returns the standard navigation targets.
func DefaultPageGatePaths() PageGatePaths {
	return PageGatePaths{
		Login:        "/login",
		Unauthorized: "/unauthorized",
		Home:         "/",
	}
}

// PageGate guards browser navigation with the same decision engine as the
// API routes. Instead of JSON errors it answers with redirects: to the login
// page when no principal is present, to the unauthorized page when the
// principal lacks access. Authenticated principals visiting a public page
// (login, register) are bounced home.
type PageGate struct {
	access   *usecase.AccessService
	metrics  *HTTPMetrics
	paths    PageGatePaths
	prefixes []string
	public   map[string]struct{}
}

// NewPageGate constructs a PageGate guarding the supplied path prefixes. Each
// prefix must have a matching page policy registered; the policy registry's
// startup validation catches gaps before the first request. The unauthorized
// page itself is always reachable, or denial redirects would loop.
func NewPageGate(access *usecase.AccessService, metrics *HTTPMetrics, paths PageGatePaths, prefixes []string, publicPaths []string) *PageGate {
	ordered := make([]string, len(prefixes))
	copy(ordered, prefixes)
	// Longest prefix wins so /admin is matched before /.
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	public := make(map[string]struct{}, len(publicPaths))
	for _, path := range publicPaths {
		public[path] = struct{}{}
	}

	return &PageGate{
		access:   access,
		metrics:  metrics,
		paths:    paths,
		prefixes: ordered,
		public:   public,
	}
}

// Handler returns the gin middleware enforcing the page policies.
func (g *PageGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		principal := PrincipalFrom(c)

		if path == g.paths.Unauthorized {
			c.Next()
			return
		}

		if _, isPublic := g.public[path]; isPublic {
			if principal.IsAuthenticated() {
				c.Redirect(http.StatusFound, g.paths.Home)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		prefix, guarded := g.matchPrefix(path)
		if !guarded {
			c.Next()
			return
		}

		decision := g.access.Authorize(c.Request.Context(), principal, domain.PageResource(prefix), domain.ActionRead, "")
		g.metrics.ObserveDecision(decision)

		if decision.Allowed {
			c.Next()
			return
		}

		// Redirect targets fail closed: an engine failure sends the visitor
		// to the unauthorized page, never through to the content.
		target := g.paths.Unauthorized
		if decision.Code == domain.DenyNotAuthenticated {
			target = g.paths.Login
		}

		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

func (g *PageGate) matchPrefix(path string) (string, bool) {
	for _, prefix := range g.prefixes {
		if prefix == "/" {
			return prefix, true
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return prefix, true
		}
	}
	return "", false
}
