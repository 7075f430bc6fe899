package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

const (
	principalKey  = "principal"
	authErrorKey  = "auth_error"
	credentialKey = "session_credential"
)

// Authenticate resolves the session credential into a principal and stores it
// on the request context. The credential is read from the Authorization
// header first, then from the session cookie. Resolution never aborts the
// request: routes that tolerate anonymous access keep working, and the
// enforcement gates downstream decide what a missing or broken credential
// means for them.
func Authenticate(auth *usecase.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractCredential(c, cookieName)
		if token == "" {
			c.Set(principalKey, domain.Anonymous)
			c.Next()
			return
		}

		c.Set(credentialKey, token)

		principal, err := auth.ResolvePrincipal(c.Request.Context(), token)
		if err != nil {
			c.Set(principalKey, domain.Anonymous)
			c.Set(authErrorKey, err)
			c.Next()
			return
		}

		c.Set(principalKey, principal)
		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = principal.ID
		}

		c.Next()
	}
}

// PrincipalFrom returns the resolved principal for the request, or Anonymous
// when authentication did not run or failed.
func PrincipalFrom(c *gin.Context) domain.Principal {
	if value, exists := c.Get(principalKey); exists {
		if principal, ok := value.(domain.Principal); ok {
			return principal
		}
	}
	return domain.Anonymous
}

// AuthErrorFrom returns the credential resolution error, if any. A nil return
// with an anonymous principal means no credential was presented at all.
func AuthErrorFrom(c *gin.Context) error {
	if value, exists := c.Get(authErrorKey); exists {
		if err, ok := value.(error); ok {
			return err
		}
	}
	return nil
}

// CredentialFrom returns the raw session credential presented with the
// request. Used by logout to revoke the exact credential; it is never logged.
func CredentialFrom(c *gin.Context) string {
	if value, exists := c.Get(credentialKey); exists {
		if token, ok := value.(string); ok {
			return token
		}
	}
	return ""
}

func extractCredential(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			return strings.TrimSpace(cookie)
		}
	}

	return ""
}
