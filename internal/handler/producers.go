package handler

import (
	"net/http"

	"agrotrace/internal/apierror"
	"agrotrace/internal/dto"
	"agrotrace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProducersHandler struct {
	svc           service.ProducerService
	certification service.CertificationService
}

func NewProducersHandler(svc service.ProducerService, certification service.CertificationService) *ProducersHandler {
	return &ProducersHandler{svc: svc, certification: certification}
}

// Create godoc
// @Summary Register a producer
// @Tags producers
// @Accept json
// @Produce json
// @Param request body dto.CreateProducerRequest true "Producer data"
// @Success 201 {object} dto.ProducerResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/producers [post]
func (h *ProducersHandler) Create(c *gin.Context) {
	var req dto.CreateProducerRequest
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

func (h *ProducersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProducersHandler) GetByID(c *gin.Context) {
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

type renewCertificateRequest struct {
	CertificateExpiry string `json:"certificate_expiry" validate:"required"`
}

func (h *ProducersHandler) RenewCertificate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req renewCertificateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RenewCertificate(c.Request.Context(), id, req.CertificateExpiry)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyGGN godoc
// @Summary Advisory GLOBALG.A.P. registry lookup
// @Tags producers
// @Produce json
// @Param ggn path string true "GGN number"
// @Success 200 {object} dto.VerifyGGNResponse
// @Failure 503 {object} apierror.APIError
// @Router /v1/producers/ggn/{ggn} [get]
func (h *ProducersHandler) VerifyGGN(c *gin.Context) {
	resp, err := h.certification.VerifyGGN(c.Request.Context(), c.Param("ggn"))
	if err != nil {
		if service.IsRegistryUnavailable(err) {
			c.JSON(http.StatusServiceUnavailable, apierror.New("GGN registry temporarily unavailable"))
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
