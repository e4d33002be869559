package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/facilitator-analytics/internal/middleware"
	"github.com/atelierhq/facilitator-analytics/internal/models"
	"github.com/atelierhq/facilitator-analytics/internal/service"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
	"github.com/atelierhq/facilitator-analytics/pkg/response"
)

type statsService interface {
	Summarize(ctx context.Context, req service.SummaryRequest) (*models.SummaryResult, bool, error)
	SystemMetrics() models.SystemMetrics
}

type exportService interface {
	RenderSummary(ctx context.Context, req service.SummaryRequest, format service.ExportFormat) (*service.ExportResult, error)
}

// StatsHandler exposes the facilitator activity summary endpoints.
type StatsHandler struct {
	service statsService
	export  exportService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(svc statsService, export exportService) *StatsHandler {
	return &StatsHandler{service: svc, export: export}
}

// Summary godoc
// @Summary Facilitator activity summary
// @Tags Stats
// @Produce json
// @Param start query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param end query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param host_id query string false "Restrict to one facilitator"
// @Param purpose query string false "Restrict to one purpose"
// @Param include_cancelled query bool false "Include canceled appointments"
// @Param use_facilitator_terms query bool false "Clamp per facilitator to their availability term"
// @Success 200 {object} response.Envelope
// @Router /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := parseSummaryRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Summarize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}

// Export godoc
// @Summary Download the activity summary as CSV or PDF
// @Tags Stats
// @Produce text/csv,application/pdf
// @Param format query string true "Export format (csv or pdf)"
// @Param start query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param end query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param host_id query string false "Restrict to one facilitator"
// @Success 200 {file} file
// @Router /stats/summary/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := parseSummaryRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	if format != service.FormatCSV && format != service.FormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	result, err := h.export.RenderSummary(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// System godoc
// @Summary Instrumentation snapshot
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/system [get]
func (h *StatsHandler) System(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.service.SystemMetrics(), nil)
}

func parseSummaryRequest(c *gin.Context) (service.SummaryRequest, error) {
	req := service.SummaryRequest{
		HostID:  strings.TrimSpace(c.Query("host_id")),
		Purpose: strings.TrimSpace(c.Query("purpose")),
	}

	start, err := parseTimeParam(c.Query("start"))
	if err != nil {
		return req, appErrors.Clone(appErrors.ErrValidation, "invalid start, expected RFC3339 or YYYY-MM-DD")
	}
	req.Start = start

	end, err := parseTimeParam(c.Query("end"))
	if err != nil {
		return req, appErrors.Clone(appErrors.ErrValidation, "invalid end, expected RFC3339 or YYYY-MM-DD")
	}
	req.End = end

	if req.IncludeCancelled, err = parseBoolParam(c.Query("include_cancelled")); err != nil {
		return req, appErrors.Clone(appErrors.ErrValidation, "invalid include_cancelled, expected true or false")
	}
	if req.UseFacilitatorTerms, err = parseBoolParam(c.Query("use_facilitator_terms")); err != nil {
		return req, appErrors.Clone(appErrors.ErrValidation, "invalid use_facilitator_terms, expected true or false")
	}
	return req, nil
}

func parseTimeParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		utc := parsed.UTC()
		return &utc, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}

func parseBoolParam(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
