package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atelierhq/facilitator-analytics/internal/models"
)

const appointmentColumns = "id, host_id, starts_at, ends_at, badge_ids, attendee_ids, status, purpose, result, arrival_status, arrival_scan_at, feedback, published"

// AppointmentRepository reads appointment records owned by the scheduling
// subsystem. Deployments migrated from legacy schemas may lack a queryable
// date column; dateFilterable reports whether date bounds can be pushed into
// the query.
type AppointmentRepository struct {
	db             *sqlx.DB
	dateFilterable bool
}

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB, dateFilterable bool) *AppointmentRepository {
	return &AppointmentRepository{db: db, dateFilterable: dateFilterable}
}

// ListForSummary returns published appointments matching the filter. The
// boolean reports whether date bounds were applied by the query; when false
// the caller must filter in memory.
func (r *AppointmentRepository) ListForSummary(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentRecord, bool, error) {
	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(appointmentColumns)
	builder.WriteString(" FROM appointments WHERE published = TRUE")
	var args []interface{}

	if filter.HostID != "" {
		args = append(args, filter.HostID)
		builder.WriteString(fmt.Sprintf(" AND host_id = $%d", len(args)))
	}
	if filter.Purpose != "" {
		args = append(args, filter.Purpose)
		builder.WriteString(fmt.Sprintf(" AND purpose = $%d", len(args)))
	}
	if !filter.IncludeCancelled {
		args = append(args, models.StatusCanceled)
		builder.WriteString(fmt.Sprintf(" AND status <> $%d", len(args)))
	}

	datesPushedDown := false
	if r.dateFilterable {
		if filter.DateFrom != nil {
			args = append(args, *filter.DateFrom)
			builder.WriteString(fmt.Sprintf(" AND starts_at >= $%d", len(args)))
		}
		if filter.DateTo != nil {
			args = append(args, *filter.DateTo)
			builder.WriteString(fmt.Sprintf(" AND starts_at <= $%d", len(args)))
		}
		datesPushedDown = true
	}
	builder.WriteString(" ORDER BY starts_at")

	var records []models.AppointmentRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, false, fmt.Errorf("list appointments: %w", err)
	}
	return records, datesPushedDown, nil
}

// FindByIDs bulk-loads appointments by identifier.
func (r *AppointmentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.AppointmentRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := "SELECT " + appointmentColumns + " FROM appointments WHERE id = ANY($1)"
	var records []models.AppointmentRecord
	if err := r.db.SelectContext(ctx, &records, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load appointments by ids: %w", err)
	}
	return records, nil
}
