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

type ExpeditionsHandler struct{ svc service.ExpeditionService }

func NewExpeditionsHandler(svc service.ExpeditionService) *ExpeditionsHandler {
	return &ExpeditionsHandler{svc: svc}
}

// Create godoc
// @Summary Create an outbound expedition
// @Tags expeditions
// @Accept json
// @Produce json
// @Param request body dto.CreateExpeditionRequest true "Expedition data"
// @Success 201 {object} dto.ExpeditionResponse
// @Failure 409 {object} apierror.APIError "insufficient lot quantity"
// @Failure 422 {object} apierror.APIError "validation or certification failure"
// @Router /v1/expeditions [post]
func (h *ExpeditionsHandler) Create(c *gin.Context) {
	var req dto.CreateExpeditionRequest
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

func (h *ExpeditionsHandler) List(c *gin.Context) {
	var filter repository.ExpeditionFilter
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

func (h *ExpeditionsHandler) GetByID(c *gin.Context) {
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

func (h *ExpeditionsHandler) Delete(c *gin.Context) {
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
