package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atelierhq/facilitator-analytics/internal/models"
)

const badgeColumns = "id, label, capacity, documentation_form_id, prerequisite_ids"

// BadgeRepository reads badge metadata, documentation submissions, and badge
// requests consumed by the eligibility gate.
type BadgeRepository struct {
	db *sqlx.DB
}

// NewBadgeRepository constructs a BadgeRepository.
func NewBadgeRepository(db *sqlx.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// FindBadge returns one badge by id. sql.ErrNoRows is returned unchanged.
func (r *BadgeRepository) FindBadge(ctx context.Context, badgeID string) (*models.Badge, error) {
	var badge models.Badge
	query := "SELECT " + badgeColumns + " FROM badges WHERE id = $1"
	if err := r.db.GetContext(ctx, &badge, query, badgeID); err != nil {
		return nil, err
	}
	return &badge, nil
}

// BadgesByIDs bulk-loads badges, typically to resolve labels.
func (r *BadgeRepository) BadgesByIDs(ctx context.Context, badgeIDs []string) ([]models.Badge, error) {
	if len(badgeIDs) == 0 {
		return nil, nil
	}
	query := "SELECT " + badgeColumns + " FROM badges WHERE id = ANY($1)"
	var badges []models.Badge
	if err := r.db.SelectContext(ctx, &badges, query, pq.Array(badgeIDs)); err != nil {
		return nil, fmt.Errorf("load badges by ids: %w", err)
	}
	return badges, nil
}

// SubmissionsForMember returns the member's non-draft submissions for one
// documentation form, most recently changed first.
func (r *BadgeRepository) SubmissionsForMember(ctx context.Context, memberID, formID string) ([]models.DocumentationSubmission, error) {
	query := "SELECT id, member_id, form_id, status, draft, changed_at FROM documentation_submissions WHERE member_id = $1 AND form_id = $2 AND draft = FALSE ORDER BY changed_at DESC"
	var submissions []models.DocumentationSubmission
	if err := r.db.SelectContext(ctx, &submissions, query, memberID, formID); err != nil {
		return nil, fmt.Errorf("load documentation submissions: %w", err)
	}
	return submissions, nil
}

// RequestsForMember returns the member's requests for the given badges.
func (r *BadgeRepository) RequestsForMember(ctx context.Context, memberID string, badgeIDs []string) ([]models.BadgeRequest, error) {
	if len(badgeIDs) == 0 {
		return nil, nil
	}
	query := "SELECT id, member_id, badge_id, status FROM badge_requests WHERE member_id = $1 AND badge_id = ANY($2)"
	var requests []models.BadgeRequest
	if err := r.db.SelectContext(ctx, &requests, query, memberID, pq.Array(badgeIDs)); err != nil {
		return nil, fmt.Errorf("load badge requests: %w", err)
	}
	return requests, nil
}
