package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
	"github.com/atelierhq/facilitator-analytics/pkg/response"
)

type termService interface {
	FacilitatorTerm(ctx context.Context, facilitatorID string) (*models.TimeInterval, error)
}

// TermHandler resolves the active availability interval for a facilitator.
type TermHandler struct {
	service termService
}

// NewTermHandler constructs the handler.
func NewTermHandler(service termService) *TermHandler {
	return &TermHandler{service: service}
}

// Current godoc
// @Summary Current availability interval for a facilitator
// @Tags Facilitators
// @Produce json
// @Param facilitatorId path string true "Facilitator ID"
// @Success 200 {object} response.Envelope
// @Router /facilitators/{facilitatorId}/term [get]
func (h *TermHandler) Current(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	facilitatorID := strings.TrimSpace(c.Param("facilitatorId"))
	if facilitatorID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "facilitatorId is required"))
		return
	}
	term, err := h.service.FacilitatorTerm(c.Request.Context(), facilitatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}
