package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"agrotrace/internal/apierror"
	"agrotrace/internal/dto"
	"agrotrace/internal/repository"
	"agrotrace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// availabilityCacheTTL is short on purpose: availability reads feed allocation
// UIs, and a stale balance only costs the user a rejected reservation, never a
// ledger violation.
const availabilityCacheTTL = 5 * time.Second

type ReceptionsHandler struct {
	svc    service.ReceptionService
	ledger service.LedgerService
	rdb    *redis.Client
}

func NewReceptionsHandler(svc service.ReceptionService, ledger service.LedgerService, rdb *redis.Client) *ReceptionsHandler {
	return &ReceptionsHandler{svc: svc, ledger: ledger, rdb: rdb}
}

// Create godoc
// @Summary Register an intake reception
// @Tags receptions
// @Accept json
// @Produce json
// @Param request body dto.CreateReceptionRequest true "Reception data"
// @Success 201 {object} dto.ReceptionResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/receptions [post]
func (h *ReceptionsHandler) Create(c *gin.Context) {
	var req dto.CreateReceptionRequest
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

func (h *ReceptionsHandler) List(c *gin.Context) {
	var filter repository.ReceptionFilter
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

func (h *ReceptionsHandler) GetByID(c *gin.Context) {
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

// Approve godoc
// @Summary Approve a pending reception
// @Tags receptions
// @Produce json
// @Param id path string true "Reception ID"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/receptions/{id}/approve [post]
func (h *ReceptionsHandler) Approve(c *gin.Context) {
	h.transition(c, h.svc.Approve)
}

func (h *ReceptionsHandler) Reject(c *gin.Context) {
	h.transition(c, h.svc.Reject)
}

func (h *ReceptionsHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reservations godoc
// @Summary List the ledger entries against a reception
// @Description Active reservations by default; include_released=true adds released ones for audits.
// @Tags receptions
// @Produce json
// @Param id path string true "Reception ID"
// @Param include_released query bool false "Include released reservations"
// @Success 200 {object} dto.ReservationListResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/receptions/{id}/reservations [get]
func (h *ReceptionsHandler) Reservations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	includeReleased := c.Query("include_released") == "true"
	resp, err := h.ledger.Reservations(c.Request.Context(), id, includeReleased)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Availability serves the cached ledger balance for a reception.
func (h *ReceptionsHandler) Availability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}

	ctx := c.Request.Context()
	cacheKey := "availability:" + id.String()

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.AvailabilityResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp, err := h.ledger.AvailableQuantity(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	// Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, availabilityCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
