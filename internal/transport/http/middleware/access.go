package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/infra/security"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

// DenialResponse is the JSON body returned for authorization failures on API
// routes.
type DenialResponse struct {
	Status     string    `json:"status"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

func newDenialResponse(status int, message string) DenialResponse {
	return DenialResponse{
		Status:     http.StatusText(status),
		StatusCode: status,
		Message:    message,
		Timestamp:  time.Now().UTC(),
	}
}

// AccessGate guards API routes with the shared decision engine. Routes name
// the resource and action they touch at registration time; nothing is
// inferred from handler shapes or annotations at runtime.
type AccessGate struct {
	access  *usecase.AccessService
	metrics *HTTPMetrics
}

// NewAccessGate constructs an AccessGate.
func NewAccessGate(access *usecase.AccessService, metrics *HTTPMetrics) *AccessGate {
	return &AccessGate{access: access, metrics: metrics}
}

// Require authorizes the request against the (resource, action) pair without
// an ownership check. Use for create and list routes where no resource
// instance exists yet.
func (g *AccessGate) Require(resource domain.ResourceType, action domain.Action) gin.HandlerFunc {
	return g.gate(resource, action, "")
}

// RequireOwned authorizes the request against the (resource, action) pair,
// resolving the resource instance from the named path parameter so ownership
// can override the role check.
func (g *AccessGate) RequireOwned(resource domain.ResourceType, action domain.Action, idParam string) gin.HandlerFunc {
	return g.gate(resource, action, idParam)
}

func (g *AccessGate) gate(resource domain.ResourceType, action domain.Action, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := ""
		if idParam != "" {
			resourceID = c.Param(idParam)
		}

		principal := PrincipalFrom(c)
		decision := g.access.Authorize(c.Request.Context(), principal, resource, action, resourceID)
		g.metrics.ObserveDecision(decision)

		if decision.Allowed {
			c.Next()
			return
		}

		switch {
		case decision.Code == domain.DenyNotAuthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newDenialResponse(http.StatusUnauthorized, authFailureMessage(c)))
		case decision.ServerError():
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newDenialResponse(http.StatusInternalServerError, "authorization check failed"))
		default:
			c.AbortWithStatusJSON(http.StatusForbidden,
				newDenialResponse(http.StatusForbidden, decision.Reason()))
		}
	}
}

// authFailureMessage distinguishes why no principal is present without
// leaking credential contents.
func authFailureMessage(c *gin.Context) string {
	err := AuthErrorFrom(c)
	switch {
	case err == nil:
		return "authentication required"
	case errors.Is(err, security.ErrTokenExpired):
		return "session expired"
	case errors.Is(err, usecase.ErrSessionRevoked):
		return "session revoked"
	default:
		return "invalid session credential"
	}
}
