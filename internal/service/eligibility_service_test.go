package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
)

type fakeBadgeSource struct {
	badge       *models.Badge
	badges      []models.Badge
	submissions []models.DocumentationSubmission
	requests    []models.BadgeRequest

	findErr        error
	submissionsErr error
	requestsErr    error

	submissionCalls int
	requestCalls    int
}

func (f *fakeBadgeSource) FindBadge(_ context.Context, _ string) (*models.Badge, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.badge, nil
}

func (f *fakeBadgeSource) BadgesByIDs(_ context.Context, _ []string) ([]models.Badge, error) {
	return f.badges, nil
}

func (f *fakeBadgeSource) SubmissionsForMember(_ context.Context, _, _ string) ([]models.DocumentationSubmission, error) {
	f.submissionCalls++
	if f.submissionsErr != nil {
		return nil, f.submissionsErr
	}
	return f.submissions, nil
}

func (f *fakeBadgeSource) RequestsForMember(_ context.Context, _ string, _ []string) ([]models.BadgeRequest, error) {
	f.requestCalls++
	if f.requestsErr != nil {
		return nil, f.requestsErr
	}
	return f.requests, nil
}

func TestEvaluateAllowsUnconstrainedBadge(t *testing.T) {
	source := &fakeBadgeSource{badge: &models.Badge{ID: "saw", Label: "Table Saw"}}
	svc := NewEligibilityService(source, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "member-1", "saw")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.False(t, result.RequiresDocumentation)
	assert.Empty(t, result.Reasons)
	assert.Equal(t, 0, source.submissionCalls)
	assert.Equal(t, 0, source.requestCalls)
}

func TestEvaluateApprovedDocumentation(t *testing.T) {
	source := &fakeBadgeSource{
		badge: &models.Badge{ID: "laser", Label: "Laser Cutter", DocumentationFormID: strptr("form-1")},
		submissions: []models.DocumentationSubmission{
			{ID: "sub-2", Status: "Approved"},
			{ID: "sub-1", Status: "rejected"},
		},
	}
	svc := NewEligibilityService(source, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "member-1", "laser")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.True(t, result.RequiresDocumentation)
	assert.True(t, result.DocumentationApproved)
}

func TestEvaluateMissingDocumentationBlocks(t *testing.T) {
	source := &fakeBadgeSource{
		badge:       &models.Badge{ID: "laser", Label: "Laser Cutter", DocumentationFormID: strptr("form-1")},
		submissions: []models.DocumentationSubmission{{ID: "sub-1", Status: "pending"}},
	}
	svc := NewEligibilityService(source, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "member-1", "laser")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.True(t, result.RequiresDocumentation)
	assert.False(t, result.DocumentationApproved)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "Laser Cutter")
}

func TestEvaluateBothChecksAlwaysRun(t *testing.T) {
	source := &fakeBadgeSource{
		badge: &models.Badge{
			ID:                  "cnc",
			Label:               "CNC Router",
			DocumentationFormID: strptr("form-2"),
			PrerequisiteIDs:     []string{"saw", "laser"},
		},
		badges:   []models.Badge{{ID: "saw", Label: "Table Saw"}},
		requests: []models.BadgeRequest{{BadgeID: "laser", Status: "active"}},
	}
	svc := NewEligibilityService(source, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "member-1", "cnc")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, []string{"saw"}, result.MissingPrerequisites)
	// The documentation failure does not short-circuit the prerequisite check.
	require.Len(t, result.Reasons, 2)
	assert.Equal(t, 1, source.submissionCalls)
	assert.Equal(t, 1, source.requestCalls)
	assert.Contains(t, result.Reasons[1], "Table Saw")
}

func TestEvaluatePrerequisiteOwnership(t *testing.T) {
	source := &fakeBadgeSource{
		badge: &models.Badge{ID: "cnc", PrerequisiteIDs: []string{"saw", "saw", "cnc", "", "laser"}},
		requests: []models.BadgeRequest{
			{BadgeID: "saw", Status: ""},
			{BadgeID: "laser", Status: "duplicate"},
		},
	}
	svc := NewEligibilityService(source, zap.NewNop())

	result, err := svc.Evaluate(context.Background(), "member-1", "cnc")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	// Empty status counts as owned, duplicate does not; self and blanks are dropped.
	assert.Equal(t, []string{"laser"}, result.MissingPrerequisites)
}

func TestEvaluateUnknownBadge(t *testing.T) {
	source := &fakeBadgeSource{findErr: sql.ErrNoRows}
	svc := NewEligibilityService(source, zap.NewNop())

	_, err := svc.Evaluate(context.Background(), "member-1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEvaluateValidatesIdentifiers(t *testing.T) {
	svc := NewEligibilityService(&fakeBadgeSource{}, zap.NewNop())

	_, err := svc.Evaluate(context.Background(), "", "badge-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Evaluate(context.Background(), "member-1", " ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
