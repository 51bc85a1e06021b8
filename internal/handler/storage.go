package handler

import (
	"net/http"

	"agrotrace/internal/apierror"
	"agrotrace/internal/dto"
	"agrotrace/internal/repository"
	"agrotrace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StorageHandler struct{ svc service.StorageService }

func NewStorageHandler(svc service.StorageService) *StorageHandler {
	return &StorageHandler{svc: svc}
}

// RecordMovement godoc
// @Summary Record a physical lot movement
// @Tags storage
// @Accept json
// @Produce json
// @Param request body dto.RecordMovementRequest true "Movement data"
// @Success 201 {object} dto.MovementResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/movements [post]
func (h *StorageHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StorageHandler) ListMovements(c *gin.Context) {
	var filter repository.MovementFilter
	if raw := c.Query("reception_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid reception_id"))
			return
		}
		filter.ReceptionID = &id
	}
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid location_id"))
			return
		}
		filter.LocationID = &id
	}
	filter.MovementType = c.Query("movement_type")
	filter.Page = intQuery(c, "page")
	filter.Limit = intQuery(c, "limit")

	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorageHandler) GetPosition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Position(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorageHandler) ListPositions(c *gin.Context) {
	var locationID *uuid.UUID
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid location_id"))
			return
		}
		locationID = &id
	}
	resp, err := h.svc.ListPositions(c.Request.Context(), locationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorageHandler) CreateLocation(c *gin.Context) {
	var req dto.CreateLocationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateLocation(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StorageHandler) ListLocations(c *gin.Context) {
	resp, err := h.svc.ListLocations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
