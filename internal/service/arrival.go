package service

import (
	"time"

	"github.com/atelierhq/facilitator-analytics/internal/models"
)

// BuildArrivalWindow derives the scan-eligible window for one appointment:
// scheduled start minus the pre-window through scheduled end. Returns nil
// when either endpoint is absent or zero; callers treat a missing window as
// "skip classification".
func BuildArrivalWindow(scheduledStart, scheduledEnd *time.Time, preWindow time.Duration, timezone string) *models.ArrivalWindow {
	if scheduledStart == nil || scheduledEnd == nil {
		return nil
	}
	if scheduledStart.IsZero() || scheduledEnd.IsZero() {
		return nil
	}
	return &models.ArrivalWindow{
		Start:    scheduledStart.Add(-preWindow),
		End:      *scheduledEnd,
		Timezone: timezone,
	}
}

// ClassifyArrival maps a candidate scan onto a terminal arrival status.
// Callers locate the candidate first (earliest scan inside the window); a
// scan outside the window carries no arrival evidence for the appointment.
func ClassifyArrival(window models.ArrivalWindow, scheduledStart time.Time, scanAt *time.Time, grace time.Duration) models.ArrivalStatus {
	if scanAt == nil {
		return models.ArrivalMissed
	}
	scan := *scanAt
	if scan.Before(window.Start) || scan.After(window.End) {
		return models.ArrivalMissed
	}
	switch {
	case !scan.After(scheduledStart):
		return models.ArrivalOnTime
	case !scan.After(scheduledStart.Add(grace)):
		return models.ArrivalLateGrace
	default:
		return models.ArrivalLate
	}
}

// EarliestScanInWindow returns the authoritative candidate scan: the earliest
// timestamp inside the window, or nil when none qualifies.
func EarliestScanInWindow(scans []time.Time, window models.ArrivalWindow) *time.Time {
	var earliest *time.Time
	for idx := range scans {
		scan := scans[idx]
		if !window.Contains(scan) {
			continue
		}
		if earliest == nil || scan.Before(*earliest) {
			earliest = &scans[idx]
		}
	}
	return earliest
}
