package models

import "time"

// FacilitatorProfile is the normalised zero-or-one lookup result for a
// facilitator's configured availability. Upstream storage may hold the
// profile as a single object or a collection; repositories flatten that shape
// before it reaches the engine.
type FacilitatorProfile struct {
	FacilitatorID string         `db:"facilitator_id" json:"facilitator_id"`
	Timezone      string         `db:"timezone" json:"timezone"`
	Intervals     []TimeInterval `json:"intervals"`
}

// ScanEvent is one access-log entry used as arrival evidence.
type ScanEvent struct {
	UserID    string    `db:"user_id" json:"user_id"`
	ScannedAt time.Time `db:"scanned_at" json:"scanned_at"`
}
