package models

import "time"

// IntervalRelation classifies an interval relative to a reference instant.
type IntervalRelation string

const (
	IntervalCurrent IntervalRelation = "current"
	IntervalPast    IntervalRelation = "past"
	IntervalFuture  IntervalRelation = "future"
)

// TimeInterval is a closed availability window. Start <= End for valid
// intervals; entries with absent endpoints are discarded at the repository
// boundary and never reach selection.
type TimeInterval struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone,omitempty"`
}

// Relation reports whether the interval is current, past, or future at now.
func (i TimeInterval) Relation(now time.Time) IntervalRelation {
	switch {
	case i.End.Before(now):
		return IntervalPast
	case i.Start.After(now):
		return IntervalFuture
	default:
		return IntervalCurrent
	}
}

// Location resolves the interval's time zone, falling back to UTC.
func (i TimeInterval) Location() *time.Location {
	if i.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ArrivalWindow is the scan-eligible range for one appointment. All
// membership arithmetic is in absolute time; the zone is display-only.
type ArrivalWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone,omitempty"`
}

// Contains reports whether the instant falls inside the window.
func (w ArrivalWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ArrivalStatus is the terminal classification of a facilitator's arrival.
type ArrivalStatus string

const (
	ArrivalOnTime    ArrivalStatus = "on_time"
	ArrivalLateGrace ArrivalStatus = "late_grace"
	ArrivalLate      ArrivalStatus = "late"
	ArrivalMissed    ArrivalStatus = "missed"
)
