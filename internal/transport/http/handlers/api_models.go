package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports dependency readiness per component.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// UserSummary describes the API view of a user record. The password hash is
// never part of any response.
type UserSummary struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name,omitempty"`
	Roles        []string   `json:"roles"`
	RegisteredAt time.Time  `json:"registered_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:           user.ID,
		Email:        user.Email,
		FullName:     user.FullName,
		Roles:        domain.RoleNames(user.Roles),
		RegisteredAt: user.RegisteredAt,
		LastLogin:    user.LastLogin,
	}
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// AuthRegisterRequest defines the payload for account registration.
type AuthRegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	FullName   string `json:"full_name"`
	Password   string `json:"password" binding:"required,min=8"`
	RememberMe bool   `json:"remember_me"`
}

// AuthSessionResponse describes a successful login or registration. The same
// credential is also set as the session cookie for browser navigation.
type AuthSessionResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

// WagonCreateRequest defines the payload for creating a wagon.
type WagonCreateRequest struct {
	Number         string  `json:"number" binding:"required"`
	ManufacturerID *string `json:"manufacturer_id"`
}

// WagonUpdateRequest defines the payload for updating a wagon.
type WagonUpdateRequest struct {
	Number         *string `json:"number"`
	ManufacturerID *string `json:"manufacturer_id"`
}

// WagonResponse describes the API view of a wagon record.
type WagonResponse struct {
	ID             string    `json:"id"`
	Number         string    `json:"number"`
	ManufacturerID *string   `json:"manufacturer_id,omitempty"`
	CreatorID      string    `json:"creator_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newWagonResponse(wagon domain.Wagon) WagonResponse {
	return WagonResponse{
		ID:             wagon.ID,
		Number:         wagon.Number,
		ManufacturerID: wagon.ManufacturerID,
		CreatorID:      wagon.CreatorID,
		CreatedAt:      wagon.CreatedAt,
		UpdatedAt:      wagon.UpdatedAt,
	}
}

// ManufacturerCreateRequest defines the payload for creating a manufacturer.
type ManufacturerCreateRequest struct {
	Name    string `json:"name" binding:"required"`
	Country string `json:"country"`
}

// ManufacturerUpdateRequest defines the payload for updating a manufacturer.
type ManufacturerUpdateRequest struct {
	Name    *string `json:"name"`
	Country *string `json:"country"`
}

// ManufacturerResponse describes the API view of a manufacturer record.
type ManufacturerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newManufacturerResponse(manufacturer domain.Manufacturer) ManufacturerResponse {
	return ManufacturerResponse{
		ID:        manufacturer.ID,
		Name:      manufacturer.Name,
		Country:   manufacturer.Country,
		CreatorID: manufacturer.CreatorID,
		CreatedAt: manufacturer.CreatedAt,
		UpdatedAt: manufacturer.UpdatedAt,
	}
}

// UserUpdateRequest defines the payload for updating a user record.
type UserUpdateRequest struct {
	FullName *string  `json:"full_name"`
	Roles    []string `json:"roles"`
}
