package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	"github.com/atelierhq/facilitator-analytics/pkg/export"
)

// ExportFormat identifies a supported download format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (*models.SummaryResult, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders facilitator summaries into downloadable files.
type ExportService struct {
	stats  summarizer
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService wires the export pipeline.
func NewExportService(stats summarizer, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{stats: stats, csv: csv, pdf: pdf, logger: logger}
}

// ExportResult carries rendered bytes and download metadata.
type ExportResult struct {
	Content     []byte
	Filename    string
	ContentType string
}

// RenderSummary aggregates the requested window and renders it in the given format.
func (s *ExportService) RenderSummary(ctx context.Context, req SummaryRequest, format ExportFormat) (*ExportResult, error) {
	summary, _, err := s.stats.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}
	dataset, title := buildSummaryDataset(summary)
	timestamp := time.Now().UTC().Format("20060102_150405")

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("facilitator_summary_%s.csv", timestamp),
			ContentType: "text/csv",
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("facilitator_summary_%s.pdf", timestamp),
			ContentType: "application/pdf",
		}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %s", format)
	}
}

var summaryHeaders = []string{
	"Facilitator ID", "Appointments", "Badge Sessions", "Attendees", "Feedback", "Canceled",
	"Active Days", "Arrival Days", "Arrival Rate (%)", "Per Week", "Per Month", "Last Appointment",
}

func buildSummaryDataset(summary *models.SummaryResult) (export.Dataset, string) {
	ids := make([]string, 0, len(summary.Facilitators))
	for id := range summary.Facilitators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		f := summary.Facilitators[id]
		rows = append(rows, map[string]string{
			"Facilitator ID":   id,
			"Appointments":     fmt.Sprintf("%d", f.Appointments),
			"Badge Sessions":   fmt.Sprintf("%d", f.BadgeSessions),
			"Attendees":        fmt.Sprintf("%d", f.Attendees),
			"Feedback":         fmt.Sprintf("%d", f.FeedbackCount),
			"Canceled":         fmt.Sprintf("%d", f.Cancellations),
			"Active Days":      fmt.Sprintf("%d", f.ActiveDays),
			"Arrival Days":     formatOptionalInt(f.ArrivalDays),
			"Arrival Rate (%)": formatOptionalFloat(f.ArrivalRate, 1),
			"Per Week":         formatOptionalFloat(f.AppointmentsPerWeek, 2),
			"Per Month":        formatOptionalFloat(f.AppointmentsPerMonth, 2),
			"Last Appointment": formatExportTime(f.LastAppointmentAt),
		})
	}
	title := fmt.Sprintf("Facilitator Summary %s", summary.GeneratedAt.Format("2006-01-02"))
	return export.Dataset{Headers: summaryHeaders, Rows: rows}, title
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func formatOptionalFloat(v *float64, decimals int) string {
	if v == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.*f", decimals, *v), "0"), ".")
}

func formatExportTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
