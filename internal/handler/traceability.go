package handler

import (
	"net/http"

	"agrotrace/internal/apierror"
	"agrotrace/internal/service"
	"agrotrace/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TraceabilityHandler struct {
	svc        service.TraceabilityService
	dispatcher *worker.Dispatcher
}

func NewTraceabilityHandler(svc service.TraceabilityService, dispatcher *worker.Dispatcher) *TraceabilityHandler {
	return &TraceabilityHandler{svc: svc, dispatcher: dispatcher}
}

// Forward godoc
// @Summary Forward trace from a reception
// @Description Every consolidation and expedition that drew from the
// @Description reception, oldest first. Reversed operations are hidden unless
// @Description include_inactive=true.
// @Tags traceability
// @Produce json
// @Param id path string true "Reception ID"
// @Param include_inactive query bool false "Include reversed operations"
// @Success 200 {object} dto.TraceForwardResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/traceability/forward/{id} [get]
func (h *TraceabilityHandler) Forward(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	includeInactive := c.Query("include_inactive") == "true"

	resp, err := h.svc.TraceForward(c.Request.Context(), id, includeInactive)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Backward godoc
// @Summary Backward trace from a consolidation or expedition
// @Description Reversed targets resolve as 404 unless include_inactive=true.
// @Tags traceability
// @Produce json
// @Param kind path string true "consolidation | expedition"
// @Param id path string true "Operation ID"
// @Param include_inactive query bool false "Resolve reversed operations"
// @Success 200 {object} dto.TraceBackwardResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/traceability/backward/{kind}/{id} [get]
func (h *TraceabilityHandler) Backward(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	includeInactive := c.Query("include_inactive") == "true"
	resp, err := h.svc.TraceBackward(c.Request.Context(), c.Param("kind"), id, includeInactive)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LabelPayload serves the machine-readable content for a printed lot label.
func (h *TraceabilityHandler) LabelPayload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.LabelPayload(c.Request.Context(), c.Param("kind"), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportReport enqueues an async XLSX export of the backward trace.
func (h *TraceabilityHandler) ExportReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	kind := c.Param("kind")
	if kind != service.TraceConsolidation && kind != service.TraceExpedition {
		c.JSON(http.StatusBadRequest, apierror.New("unknown trace kind"))
		return
	}

	payload := worker.ReportJobPayload{
		Kind:    kind,
		ID:      id.String(),
		ToEmail: c.Query("email"),
	}
	if err := h.dispatcher.EnqueueReport(c.Request.Context(), payload); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
