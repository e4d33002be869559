package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
)

type badgeSource interface {
	FindBadge(ctx context.Context, badgeID string) (*models.Badge, error)
	BadgesByIDs(ctx context.Context, badgeIDs []string) ([]models.Badge, error)
	// SubmissionsForMember returns non-draft submissions, newest change first.
	SubmissionsForMember(ctx context.Context, memberID, formID string) ([]models.DocumentationSubmission, error)
	RequestsForMember(ctx context.Context, memberID string, badgeIDs []string) ([]models.BadgeRequest, error)
}

// EligibilityService evaluates whether a member may proceed toward a badge.
// The documentation check and the prerequisite check both always run so the
// result carries every blocking reason at once.
type EligibilityService struct {
	badges badgeSource
	logger *zap.Logger
}

// NewEligibilityService constructs the eligibility gate.
func NewEligibilityService(badges badgeSource, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{badges: badges, logger: logger}
}

// Evaluate runs both eligibility checks for one member and badge.
func (s *EligibilityService) Evaluate(ctx context.Context, memberID, badgeID string) (*models.EligibilityResult, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "member id required")
	}
	if strings.TrimSpace(badgeID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "badge id required")
	}

	badge, err := s.badges.FindBadge(ctx, badgeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "badge not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load badge")
	}

	result := &models.EligibilityResult{Allowed: true}

	if badge.DocumentationFormID != nil && *badge.DocumentationFormID != "" {
		result.RequiresDocumentation = true
		submissions, err := s.badges.SubmissionsForMember(ctx, memberID, *badge.DocumentationFormID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documentation submissions")
		}
		for _, submission := range submissions {
			if strings.EqualFold(submission.Status, "approved") {
				result.DocumentationApproved = true
				break
			}
		}
		if !result.DocumentationApproved {
			result.Allowed = false
			result.Reasons = append(result.Reasons, fmt.Sprintf("documentation for %s has not been approved", badge.Label))
		}
	}

	prereqIDs := make([]string, 0, len(badge.PrerequisiteIDs))
	seen := map[string]struct{}{}
	for _, id := range badge.PrerequisiteIDs {
		if id == "" || id == badge.ID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		prereqIDs = append(prereqIDs, id)
	}

	if len(prereqIDs) > 0 {
		requests, err := s.badges.RequestsForMember(ctx, memberID, prereqIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load badge requests")
		}
		owned := map[string]struct{}{}
		for _, request := range requests {
			if request.Status == "" || strings.EqualFold(request.Status, "active") {
				owned[request.BadgeID] = struct{}{}
			}
		}

		var missing []string
		for _, id := range prereqIDs {
			if _, ok := owned[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			result.Allowed = false
			result.MissingPrerequisites = missing
			result.Reasons = append(result.Reasons, fmt.Sprintf("missing prerequisite badges: %s", strings.Join(s.labelsFor(ctx, missing), ", ")))
		}
	}

	return result, nil
}

func (s *EligibilityService) labelsFor(ctx context.Context, badgeIDs []string) []string {
	labels := make([]string, 0, len(badgeIDs))
	byID := map[string]string{}
	if badges, err := s.badges.BadgesByIDs(ctx, badgeIDs); err != nil {
		s.logger.Warn("badge label lookup failed", zap.Error(err))
	} else {
		for _, badge := range badges {
			byID[badge.ID] = badge.Label
		}
	}
	for _, id := range badgeIDs {
		if label, ok := byID[id]; ok && label != "" {
			labels = append(labels, label)
			continue
		}
		labels = append(labels, id)
	}
	return labels
}
