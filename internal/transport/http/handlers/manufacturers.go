package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/repository"
	"github.com/yakubikk/railway-registry/internal/transport/http/middleware"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

// ManufacturerHandler exposes CRUD endpoints for the manufacturer registry.
type ManufacturerHandler struct {
	manufacturers *usecase.ManufacturerService
}

// NewManufacturerHandler builds a ManufacturerHandler.
func NewManufacturerHandler(manufacturers *usecase.ManufacturerService) *ManufacturerHandler {
	return &ManufacturerHandler{manufacturers: manufacturers}
}

var manufacturerErrorCases = []ErrorCase{
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "manufacturer not found"},
	{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "manufacturer already registered"},
}

// List returns every manufacturer record.
func (h *ManufacturerHandler) List(c *gin.Context) {
	manufacturers, err := h.manufacturers.ListManufacturers(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, manufacturerErrorCases, http.StatusInternalServerError, "failed to list manufacturers")
		return
	}

	response := make([]ManufacturerResponse, 0, len(manufacturers))
	for _, manufacturer := range manufacturers {
		response = append(response, newManufacturerResponse(manufacturer))
	}
	c.JSON(http.StatusOK, response)
}

// Get returns a single manufacturer by id.
func (h *ManufacturerHandler) Get(c *gin.Context) {
	manufacturer, err := h.manufacturers.GetManufacturer(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, manufacturerErrorCases, http.StatusInternalServerError, "failed to load manufacturer")
		return
	}

	c.JSON(http.StatusOK, newManufacturerResponse(*manufacturer))
}

// Create inserts a manufacturer owned by the acting principal.
func (h *ManufacturerHandler) Create(c *gin.Context) {
	var req ManufacturerCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "manufacturer name is required"))
		return
	}

	principal := middleware.PrincipalFrom(c)
	manufacturer, err := h.manufacturers.CreateManufacturer(c.Request.Context(), principal.ID, usecase.CreateManufacturerInput{
		Name:    req.Name,
		Country: req.Country,
	})
	if err != nil {
		RespondWithMappedError(c, err, manufacturerErrorCases, http.StatusInternalServerError, "failed to create manufacturer")
		return
	}

	c.JSON(http.StatusCreated, newManufacturerResponse(*manufacturer))
}

// Update modifies an existing manufacturer.
func (h *ManufacturerHandler) Update(c *gin.Context) {
	var req ManufacturerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid manufacturer payload"))
		return
	}

	manufacturer, err := h.manufacturers.UpdateManufacturer(c.Request.Context(), usecase.UpdateManufacturerInput{
		ID:      c.Param("id"),
		Name:    req.Name,
		Country: req.Country,
	})
	if err != nil {
		RespondWithMappedError(c, err, manufacturerErrorCases, http.StatusInternalServerError, "failed to update manufacturer")
		return
	}

	c.JSON(http.StatusOK, newManufacturerResponse(*manufacturer))
}

// Delete removes a manufacturer record.
func (h *ManufacturerHandler) Delete(c *gin.Context) {
	if err := h.manufacturers.DeleteManufacturer(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, manufacturerErrorCases, http.StatusInternalServerError, "failed to delete manufacturer")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "manufacturer deleted"})
}
