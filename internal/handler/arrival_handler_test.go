package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	"github.com/atelierhq/facilitator-analytics/internal/service"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
)

type fakeArrivalSrv struct {
	status  models.ArrivalStatus
	window  *models.ArrivalWindow
	err     error
	lastReq service.ClassifyArrivalRequest
}

func (f *fakeArrivalSrv) Classify(req service.ClassifyArrivalRequest) (models.ArrivalStatus, *models.ArrivalWindow, error) {
	f.lastReq = req
	return f.status, f.window, f.err
}

func postJSON(t *testing.T, path string, payload interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return rec, c
}

func TestArrivalHandlerClassify(t *testing.T) {
	gin.SetMode(gin.TestMode)
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	srv := &fakeArrivalSrv{
		status: models.ArrivalOnTime,
		window: &models.ArrivalWindow{Start: start.Add(-30 * time.Minute), End: start.Add(time.Hour)},
	}
	handler := NewArrivalHandler(srv)

	rec, c := postJSON(t, "/arrivals/classify", map[string]interface{}{
		"scheduled_start": start.Format(time.RFC3339),
		"scheduled_end":   start.Add(time.Hour).Format(time.RFC3339),
		"scan_at":         start.Format(time.RFC3339),
	})
	handler.Classify(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "on_time", envelope.Data["status"])
	require.NotNil(t, srv.lastReq.ScheduledStart)
	assert.True(t, srv.lastReq.ScheduledStart.Equal(start))
}

func TestArrivalHandlerClassifyValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeArrivalSrv{err: appErrors.Clone(appErrors.ErrValidation, "invalid classification payload")}
	handler := NewArrivalHandler(srv)

	rec, c := postJSON(t, "/arrivals/classify", map[string]interface{}{})
	handler.Classify(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArrivalHandlerClassifyBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewArrivalHandler(&fakeArrivalSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/arrivals/classify", bytes.NewReader([]byte("{not json")))

	handler.Classify(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArrivalHandlerCapacity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewArrivalHandler(&fakeArrivalSrv{})

	rec, c := postJSON(t, "/capacity/resolve", map[string]interface{}{
		"badge_limits":      []int{6, 3, 0},
		"facilitator_limit": 5,
	})
	handler.Capacity(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(3), envelope.Data["capacity"])
}

func TestArrivalHandlerCapacityDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewArrivalHandler(&fakeArrivalSrv{})

	rec, c := postJSON(t, "/capacity/resolve", map[string]interface{}{})
	handler.Capacity(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(1), envelope.Data["capacity"])
}
