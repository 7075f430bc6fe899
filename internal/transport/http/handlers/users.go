package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/repository"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

// UserHandler exposes CRUD endpoints for the user registry.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

var userErrorCases = []ErrorCase{
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
}

// List returns every user record.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to list users")
		return
	}

	response := make([]UserSummary, 0, len(users))
	for _, user := range users {
		response = append(response, newUserSummary(user))
	}
	c.JSON(http.StatusOK, response)
}

// Get returns a single user by id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}

// Update modifies a user's profile and role assignments.
func (h *UserHandler) Update(c *gin.Context) {
	var req UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	input := usecase.UpdateUserInput{
		ID:       c.Param("id"),
		FullName: req.FullName,
	}
	if req.Roles != nil {
		input.Roles = domain.RolesFromNames(req.Roles)
	}

	user, err := h.users.UpdateUser(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}

// Delete removes a user record.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}
