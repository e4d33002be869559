package service

import (
	"time"

	"github.com/atelierhq/facilitator-analytics/internal/models"
)

// SelectInterval picks the single most relevant interval at now. Priority:
// a current interval with the earliest start, else the most recently
// concluded past interval, else the soonest upcoming future interval. This
// is the one authoritative term/availability resolution used everywhere.
func SelectInterval(intervals []models.TimeInterval, now time.Time) *models.TimeInterval {
	var current, past, future *models.TimeInterval

	for idx := range intervals {
		candidate := &intervals[idx]
		switch candidate.Relation(now) {
		case models.IntervalCurrent:
			if current == nil || candidate.Start.Before(current.Start) {
				current = candidate
			}
		case models.IntervalPast:
			if past == nil || candidate.End.After(past.End) {
				past = candidate
			}
		case models.IntervalFuture:
			if future == nil || candidate.Start.Before(future.Start) {
				future = candidate
			}
		}
	}

	switch {
	case current != nil:
		return current
	case past != nil:
		return past
	case future != nil:
		return future
	default:
		return nil
	}
}
