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

type eligibilityService interface {
	Evaluate(ctx context.Context, memberID, badgeID string) (*models.EligibilityResult, error)
}

// EligibilityHandler answers whether a member may request a badge.
type EligibilityHandler struct {
	service eligibilityService
}

// NewEligibilityHandler constructs the handler.
func NewEligibilityHandler(service eligibilityService) *EligibilityHandler {
	return &EligibilityHandler{service: service}
}

// Evaluate godoc
// @Summary Badge request eligibility for a member
// @Tags Badges
// @Produce json
// @Param memberId path string true "Member ID"
// @Param badgeId path string true "Badge ID"
// @Success 200 {object} response.Envelope
// @Router /members/{memberId}/badges/{badgeId}/eligibility [get]
func (h *EligibilityHandler) Evaluate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	memberID := strings.TrimSpace(c.Param("memberId"))
	badgeID := strings.TrimSpace(c.Param("badgeId"))
	if memberID == "" || badgeID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "memberId and badgeId are required"))
		return
	}
	result, err := h.service.Evaluate(c.Request.Context(), memberID, badgeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
