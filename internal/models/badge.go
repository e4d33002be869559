package models

import (
	"time"

	"github.com/lib/pq"
)

// Badge is a taxonomy tag for a tool or topic with an optional attendee
// limit and eligibility prerequisites.
type Badge struct {
	ID                  string         `db:"id" json:"id"`
	Label               string         `db:"label" json:"label"`
	Capacity            int            `db:"capacity" json:"capacity"`
	DocumentationFormID *string        `db:"documentation_form_id" json:"documentation_form_id,omitempty"`
	PrerequisiteIDs     pq.StringArray `db:"prerequisite_ids" json:"prerequisite_ids,omitempty"`
}

// DocumentationSubmission is a member's submission against a badge's
// documentation requirement.
type DocumentationSubmission struct {
	ID        string    `db:"id" json:"id"`
	MemberID  string    `db:"member_id" json:"member_id"`
	FormID    string    `db:"form_id" json:"form_id"`
	Status    string    `db:"status" json:"status"`
	Draft     bool      `db:"draft" json:"draft"`
	ChangedAt time.Time `db:"changed_at" json:"changed_at"`
}

// BadgeRequest records a member's pursuit of one badge. An empty or "active"
// status counts as ownership evidence; "duplicate" requests do not.
type BadgeRequest struct {
	ID       string `db:"id" json:"id"`
	MemberID string `db:"member_id" json:"member_id"`
	BadgeID  string `db:"badge_id" json:"badge_id"`
	Status   string `db:"status" json:"status"`
}

// EligibilityResult reports every blocking reason at once; the checks never
// short-circuit each other.
type EligibilityResult struct {
	Allowed               bool     `json:"allowed"`
	RequiresDocumentation bool     `json:"requires_documentation"`
	DocumentationApproved bool     `json:"documentation_approved"`
	MissingPrerequisites  []string `json:"missing_prerequisites,omitempty"`
	Reasons               []string `json:"reasons,omitempty"`
}
