package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atelierhq/facilitator-analytics/internal/models"
)

// ScanRepository reads access-log scan events used as arrival evidence. The
// integration is optional; a nil repository or nil handle reports itself as
// structurally unavailable.
type ScanRepository struct {
	db *sqlx.DB
}

// NewScanRepository constructs a ScanRepository.
func NewScanRepository(db *sqlx.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Available reports whether the scan integration is configured.
func (r *ScanRepository) Available() bool {
	return r != nil && r.db != nil
}

// ScansForUsers bulk-loads scan events for the given users inside [from, to).
func (r *ScanRepository) ScansForUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]models.ScanEvent, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := "SELECT user_id, scanned_at FROM access_scans WHERE user_id = ANY($1) AND scanned_at >= $2 AND scanned_at < $3 ORDER BY scanned_at"
	var events []models.ScanEvent
	if err := r.db.SelectContext(ctx, &events, query, pq.Array(userIDs), from, to); err != nil {
		return nil, fmt.Errorf("load scan events: %w", err)
	}
	return events, nil
}
