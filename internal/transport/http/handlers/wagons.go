package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/repository"
	"github.com/yakubikk/railway-registry/internal/transport/http/middleware"
	"github.com/yakubikk/railway-registry/internal/usecase"
)

// WagonHandler exposes CRUD endpoints for the wagon registry. Authorization
// is enforced by the access gate attached at route registration; by the time
// a handler runs the decision has already been made.
type WagonHandler struct {
	wagons *usecase.WagonService
}

// NewWagonHandler builds a WagonHandler.
func NewWagonHandler(wagons *usecase.WagonService) *WagonHandler {
	return &WagonHandler{wagons: wagons}
}

var wagonErrorCases = []ErrorCase{
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "wagon not found"},
	{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "wagon number already registered"},
}

// List returns every wagon record.
func (h *WagonHandler) List(c *gin.Context) {
	wagons, err := h.wagons.ListWagons(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, wagonErrorCases, http.StatusInternalServerError, "failed to list wagons")
		return
	}

	response := make([]WagonResponse, 0, len(wagons))
	for _, wagon := range wagons {
		response = append(response, newWagonResponse(wagon))
	}
	c.JSON(http.StatusOK, response)
}

// Get returns a single wagon by id.
func (h *WagonHandler) Get(c *gin.Context) {
	wagon, err := h.wagons.GetWagon(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, wagonErrorCases, http.StatusInternalServerError, "failed to load wagon")
		return
	}

	c.JSON(http.StatusOK, newWagonResponse(*wagon))
}

// Create inserts a wagon owned by the acting principal.
func (h *WagonHandler) Create(c *gin.Context) {
	var req WagonCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "wagon number is required"))
		return
	}

	principal := middleware.PrincipalFrom(c)
	wagon, err := h.wagons.CreateWagon(c.Request.Context(), principal.ID, usecase.CreateWagonInput{
		Number:         req.Number,
		ManufacturerID: req.ManufacturerID,
	})
	if err != nil {
		RespondWithMappedError(c, err, wagonErrorCases, http.StatusInternalServerError, "failed to create wagon")
		return
	}

	c.JSON(http.StatusCreated, newWagonResponse(*wagon))
}

// Update modifies an existing wagon.
func (h *WagonHandler) Update(c *gin.Context) {
	var req WagonUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid wagon payload"))
		return
	}

	wagon, err := h.wagons.UpdateWagon(c.Request.Context(), usecase.UpdateWagonInput{
		ID:             c.Param("id"),
		Number:         req.Number,
		ManufacturerID: req.ManufacturerID,
	})
	if err != nil {
		RespondWithMappedError(c, err, wagonErrorCases, http.StatusInternalServerError, "failed to update wagon")
		return
	}

	c.JSON(http.StatusOK, newWagonResponse(*wagon))
}

// Delete removes a wagon record.
func (h *WagonHandler) Delete(c *gin.Context) {
	if err := h.wagons.DeleteWagon(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, wagonErrorCases, http.StatusInternalServerError, "failed to delete wagon")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "wagon deleted"})
}
