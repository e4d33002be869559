package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	"github.com/atelierhq/facilitator-analytics/internal/service"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
	"github.com/atelierhq/facilitator-analytics/pkg/response"
)

type arrivalService interface {
	Classify(req service.ClassifyArrivalRequest) (models.ArrivalStatus, *models.ArrivalWindow, error)
}

// ArrivalHandler exposes arrival classification and capacity resolution.
type ArrivalHandler struct {
	service arrivalService
}

// NewArrivalHandler constructs the handler.
func NewArrivalHandler(service arrivalService) *ArrivalHandler {
	return &ArrivalHandler{service: service}
}

type classifyResponse struct {
	Status models.ArrivalStatus  `json:"status"`
	Window *models.ArrivalWindow `json:"window"`
}

// Classify godoc
// @Summary Classify a scan against an appointment schedule
// @Tags Arrivals
// @Accept json
// @Produce json
// @Param payload body service.ClassifyArrivalRequest true "Classification payload"
// @Success 200 {object} response.Envelope
// @Router /arrivals/classify [post]
func (h *ArrivalHandler) Classify(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req service.ClassifyArrivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	status, window, err := h.service.Classify(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classifyResponse{Status: status, Window: window}, nil)
}

type capacityRequest struct {
	BadgeLimits      []int `json:"badge_limits"`
	FacilitatorLimit int   `json:"facilitator_limit"`
}

type capacityResponse struct {
	Capacity int `json:"capacity"`
}

// Capacity godoc
// @Summary Resolve the effective appointment capacity
// @Tags Arrivals
// @Accept json
// @Produce json
// @Param payload body capacityRequest true "Capacity limits"
// @Success 200 {object} response.Envelope
// @Router /capacity/resolve [post]
func (h *ArrivalHandler) Capacity(c *gin.Context) {
	var req capacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	capacity := service.ResolveCapacity(req.BadgeLimits, req.FacilitatorLimit)
	response.JSON(c, http.StatusOK, capacityResponse{Capacity: capacity}, nil)
}
