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

type ConsolidationsHandler struct{ svc service.ConsolidationService }

func NewConsolidationsHandler(svc service.ConsolidationService) *ConsolidationsHandler {
	return &ConsolidationsHandler{svc: svc}
}

// Create godoc
// @Summary Create a consolidated lot
// @Description Reserves quantity from every listed reception atomically; one
// @Description failing line rolls back the entire lot.
// @Tags consolidations
// @Accept json
// @Produce json
// @Param request body dto.CreateConsolidationRequest true "Consolidation data"
// @Success 201 {object} dto.ConsolidationResponse
// @Failure 409 {object} apierror.APIError "insufficient lot quantity"
// @Failure 422 {object} apierror.APIError "validation or certification failure"
// @Router /v1/consolidations [post]
func (h *ConsolidationsHandler) Create(c *gin.Context) {
	var req dto.CreateConsolidationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ConsolidationsHandler) List(c *gin.Context) {
	var filter repository.ConsolidationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConsolidationsHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Soft-delete a consolidated lot
// @Description Marks the lot inactive and returns every reserved quantity to
// @Description its reception. Deleting twice is a conflict.
// @Tags consolidations
// @Param id path string true "Consolidation ID"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/consolidations/{id} [delete]
func (h *ConsolidationsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
