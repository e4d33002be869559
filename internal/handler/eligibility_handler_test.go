package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
)

type fakeEligibilitySrv struct {
	result *models.EligibilityResult
	err    error
}

func (f *fakeEligibilitySrv) Evaluate(context.Context, string, string) (*models.EligibilityResult, error) {
	return f.result, f.err
}

func TestEligibilityHandlerEvaluate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEligibilityHandler(&fakeEligibilitySrv{
		result: &models.EligibilityResult{Allowed: false, MissingPrerequisites: []string{"saw"}},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/members/member-1/badges/cnc/eligibility", nil)
	c.Params = gin.Params{{Key: "memberId", Value: "member-1"}, {Key: "badgeId", Value: "cnc"}}

	handler.Evaluate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Data["allowed"])
}

func TestEligibilityHandlerEvaluateMissingParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEligibilityHandler(&fakeEligibilitySrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/members//badges/cnc/eligibility", nil)
	c.Params = gin.Params{{Key: "badgeId", Value: "cnc"}}

	handler.Evaluate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEligibilityHandlerEvaluateNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEligibilityHandler(&fakeEligibilitySrv{
		err: appErrors.Clone(appErrors.ErrNotFound, "badge not found"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/members/member-1/badges/ghost/eligibility", nil)
	c.Params = gin.Params{{Key: "memberId", Value: "member-1"}, {Key: "badgeId", Value: "ghost"}}

	handler.Evaluate(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
