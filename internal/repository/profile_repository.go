package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelierhq/facilitator-analytics/internal/models"
)

// ProfileRepository looks up facilitator profiles and their configured
// availability intervals. Upstream storage may hold several profile rows per
// facilitator across bundles; this boundary normalises to zero-or-one.
type ProfileRepository struct {
	db     *sqlx.DB
	bundle string
}

// NewProfileRepository constructs a ProfileRepository scoped to one profile
// bundle.
func NewProfileRepository(db *sqlx.DB, bundle string) *ProfileRepository {
	return &ProfileRepository{db: db, bundle: bundle}
}

type availabilityRow struct {
	StartsAt *time.Time `db:"starts_at"`
	EndsAt   *time.Time `db:"ends_at"`
	Timezone string     `db:"timezone"`
}

// FindByFacilitator returns the facilitator's profile, or nil when none
// exists. Availability rows with absent endpoints are discarded here so the
// engine only ever sees valid intervals.
func (r *ProfileRepository) FindByFacilitator(ctx context.Context, facilitatorID string) (*models.FacilitatorProfile, error) {
	var profile struct {
		ID            string `db:"id"`
		FacilitatorID string `db:"facilitator_id"`
		Timezone      string `db:"timezone"`
	}
	query := "SELECT id, facilitator_id, timezone FROM facilitator_profiles WHERE facilitator_id = $1 AND bundle = $2 ORDER BY updated_at DESC LIMIT 1"
	if err := r.db.GetContext(ctx, &profile, query, facilitatorID, r.bundle); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load facilitator profile: %w", err)
	}

	var rows []availabilityRow
	windowQuery := "SELECT starts_at, ends_at, timezone FROM availability_windows WHERE profile_id = $1 ORDER BY starts_at"
	if err := r.db.SelectContext(ctx, &rows, windowQuery, profile.ID); err != nil {
		return nil, fmt.Errorf("load availability windows: %w", err)
	}

	result := &models.FacilitatorProfile{
		FacilitatorID: profile.FacilitatorID,
		Timezone:      profile.Timezone,
	}
	for _, row := range rows {
		if row.StartsAt == nil || row.EndsAt == nil {
			continue
		}
		if row.StartsAt.IsZero() || row.EndsAt.IsZero() {
			continue
		}
		timezone := row.Timezone
		if timezone == "" {
			timezone = profile.Timezone
		}
		result.Intervals = append(result.Intervals, models.TimeInterval{
			Start:    *row.StartsAt,
			End:      *row.EndsAt,
			Timezone: timezone,
		})
	}
	return result, nil
}
