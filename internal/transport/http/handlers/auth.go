package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/infra/config"
	"github.com/yakubikk/railway-registry/internal/transport/http/middleware"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

// AuthHandler exposes login, registration, logout, and identity endpoints.
// Successful login and registration answer both audiences at once: the JSON
// body carries the credential for API clients, and the session cookie carries
// it for browser navigation.
type AuthHandler struct {
	auth    *usecase.AuthService
	session config.SessionSettings
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, session config.SessionSettings) *AuthHandler {
	return &AuthHandler{auth: auth, session: session}
}

// RegisterRoutes attaches the auth endpoints to the provided group.
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/login", h.Login)
	group.POST("/register", h.Register)
	group.POST("/logout", h.Logout)
	group.GET("/me", h.Me)
}

// Login verifies credentials and issues a session credential.
func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	credential, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	h.setSessionCookie(c, credential)
	c.JSON(http.StatusOK, AuthSessionResponse{
		Token:     credential.Token,
		TokenType: "Bearer",
		ExpiresAt: credential.ExpiresAt,
		User:      newUserSummary(*user),
	})
}

// Register creates an account and logs it in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and a password of at least 8 characters are required"))
		return
	}

	credential, user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	h.setSessionCookie(c, credential)
	c.JSON(http.StatusCreated, AuthSessionResponse{
		Token:     credential.Token,
		TokenType: "Bearer",
		ExpiresAt: credential.ExpiresAt,
		User:      newUserSummary(*user),
	})
}

// Logout revokes the presented credential and clears the session cookie. It
// succeeds even when no valid credential was presented so clients can always
// reach a clean state.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.CredentialFrom(c); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
			return
		}
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// Me returns the identity resolved from the presented credential.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if !principal.IsAuthenticated() {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, UserSummary{
		ID:    principal.ID,
		Email: principal.Email,
		Roles: domain.RoleNames(principal.Roles),
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, credential *usecase.Credential) {
	maxAge := int(time.Until(credential.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, credential.Token, maxAge, "/", "", h.session.CookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.CookieSecure, true)
}
