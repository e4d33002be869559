package models

import "time"

// FacilitatorSummary is the public projection of one facilitator's
// aggregation bucket. Rate pointers are nil when no rate window exists or the
// scan source is unavailable.
type FacilitatorSummary struct {
	FacilitatorID        string         `json:"facilitator_id"`
	Appointments         int            `json:"appointments"`
	BadgeSessions        int            `json:"badge_sessions"`
	BadgeReferences      int            `json:"badge_references"`
	Attendees            int            `json:"attendees"`
	FeedbackCount        int            `json:"feedback_count"`
	Cancellations        int            `json:"cancellations"`
	PurposeBreakdown     map[string]int `json:"purpose_breakdown,omitempty"`
	ResultBreakdown      map[string]int `json:"result_breakdown,omitempty"`
	StatusBreakdown      map[string]int `json:"status_breakdown,omitempty"`
	ArrivalBreakdown     map[string]int `json:"arrival_breakdown,omitempty"`
	ActiveDays           int            `json:"active_days"`
	ArrivalDays          *int           `json:"arrival_days,omitempty"`
	ArrivalRate          *float64       `json:"arrival_rate,omitempty"`
	AppointmentsPerWeek  *float64       `json:"appointments_per_week,omitempty"`
	AppointmentsPerMonth *float64       `json:"appointments_per_month,omitempty"`
	LastAppointmentAt    *time.Time     `json:"last_appointment_at,omitempty"`
	TermStart            *time.Time     `json:"term_start,omitempty"`
	TermEnd              *time.Time     `json:"term_end,omitempty"`
}

// RateAverages holds arithmetic means of per-facilitator rates across all
// facilitators carrying a non-nil value.
type RateAverages struct {
	AppointmentsPerWeek  *float64 `json:"appointments_per_week,omitempty"`
	AppointmentsPerMonth *float64 `json:"appointments_per_month,omitempty"`
	ArrivalRate          *float64 `json:"arrival_rate,omitempty"`
}

// SummaryResult is the aggregator output. Immutable once returned; cached
// verbatim under the request fingerprint.
type SummaryResult struct {
	TotalAppointments       int                            `json:"total_appointments"`
	BadgeSessions           int                            `json:"badge_sessions"`
	BadgeReferences         int                            `json:"badge_references"`
	TotalAttendees          int                            `json:"total_attendees"`
	FeedbackCount           int                            `json:"feedback_count"`
	Cancellations           int                            `json:"cancellations"`
	FeedbackRate            float64                        `json:"feedback_rate"`
	ArrivalRate             *float64                       `json:"arrival_rate,omitempty"`
	PurposeBreakdown        map[string]int                 `json:"purpose_breakdown,omitempty"`
	ResultBreakdown         map[string]int                 `json:"result_breakdown,omitempty"`
	StatusBreakdown         map[string]int                 `json:"status_breakdown,omitempty"`
	ArrivalBreakdown        map[string]int                 `json:"arrival_breakdown,omitempty"`
	Facilitators            map[string]*FacilitatorSummary `json:"facilitators"`
	FacilitatorRateAverages RateAverages                   `json:"facilitator_rate_averages"`
	DatesFilteredInMemory   bool                           `json:"dates_filtered_in_memory,omitempty"`
	GeneratedAt             time.Time                      `json:"generated_at"`
}

// Pagination describes list envelope metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
