package models

import (
	"time"

	"github.com/lib/pq"
)

// StatusCanceled is the distinguished status tag excluded from summaries by
// default.
const StatusCanceled = "canceled"

// AppointmentRecord is a read-only view of one appointment as owned by the
// scheduling subsystem. The engine never mutates these rows.
type AppointmentRecord struct {
	ID            string         `db:"id" json:"id"`
	HostID        string         `db:"host_id" json:"host_id"`
	StartsAt      *time.Time     `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt        *time.Time     `db:"ends_at" json:"ends_at,omitempty"`
	BadgeIDs      pq.StringArray `db:"badge_ids" json:"badge_ids,omitempty"`
	AttendeeIDs   pq.StringArray `db:"attendee_ids" json:"attendee_ids,omitempty"`
	Status        string         `db:"status" json:"status"`
	Purpose       string         `db:"purpose" json:"purpose"`
	Result        string         `db:"result" json:"result"`
	ArrivalStatus *string        `db:"arrival_status" json:"arrival_status,omitempty"`
	ArrivalScanAt *time.Time     `db:"arrival_scan_at" json:"arrival_scan_at,omitempty"`
	Feedback      *string        `db:"feedback" json:"feedback,omitempty"`
	Published     bool           `db:"published" json:"published"`
}

// AppointmentFilter scopes summary scans. Date bounds are pushed into the
// query when the deployment has a queryable date column.
type AppointmentFilter struct {
	HostID           string
	Purpose          string
	IncludeCancelled bool
	DateFrom         *time.Time
	DateTo           *time.Time
}
