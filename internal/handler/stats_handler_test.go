package handler

import (
	"context"
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
)

type fakeStatsSrv struct {
	result   *models.SummaryResult
	err      error
	hit      bool
	lastReq  service.SummaryRequest
	snapshot models.SystemMetrics
}

func (f *fakeStatsSrv) Summarize(_ context.Context, req service.SummaryRequest) (*models.SummaryResult, bool, error) {
	f.lastReq = req
	return f.result, f.hit, f.err
}

func (f *fakeStatsSrv) SystemMetrics() models.SystemMetrics {
	return f.snapshot
}

type fakeExportSrv struct {
	result *service.ExportResult
	err    error
}

func (f *fakeExportSrv) RenderSummary(context.Context, service.SummaryRequest, service.ExportFormat) (*service.ExportResult, error) {
	return f.result, f.err
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error map[string]interface{} `json:"error"`
}

func TestStatsHandlerSummarySuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStatsSrv{
		result: &models.SummaryResult{TotalAppointments: 3, GeneratedAt: time.Now().UTC()},
		hit:    true,
	}
	handler := NewStatsHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/summary?start=2025-03-01&end=2025-03-31T23%3A59%3A00Z&host_id=fac-1&include_cancelled=true", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(3), envelope.Data["total_appointments"])
	assert.Equal(t, true, envelope.Meta["cache_hit"])

	assert.Equal(t, "fac-1", srv.lastReq.HostID)
	assert.True(t, srv.lastReq.IncludeCancelled)
	require.NotNil(t, srv.lastReq.Start)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *srv.lastReq.Start)
	require.NotNil(t, srv.lastReq.End)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC), *srv.lastReq.End)
}

func TestStatsHandlerSummaryInvalidParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatsHandler(&fakeStatsSrv{}, nil)

	for _, query := range []string{
		"start=not-a-date",
		"end=31/03/2025",
		"include_cancelled=maybe",
		"use_facilitator_terms=2x",
	} {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/stats/summary?"+query, nil)

		handler.Summary(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestStatsHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	export := &fakeExportSrv{result: &service.ExportResult{
		Content:     []byte("Facilitator ID\n"),
		Filename:    "facilitator_summary_20250320_120000.csv",
		ContentType: "text/csv",
	}}
	handler := NewStatsHandler(&fakeStatsSrv{}, export)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/summary/export?format=csv", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestStatsHandlerExportRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatsHandler(&fakeStatsSrv{}, &fakeExportSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/summary/export?format=xlsx", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsHandlerSystem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStatsSrv{snapshot: models.SystemMetrics{RequestsTotal: 42}}
	handler := NewStatsHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/system", nil)

	handler.System(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(42), envelope.Data["requests_total"])
}
