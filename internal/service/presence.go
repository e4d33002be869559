package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
)

const dayKeyLayout = "2006-01-02"

// ScanSource abstracts the access-log integration. Available reports
// structural presence of the integration, distinct from transient faults.
type ScanSource interface {
	Available() bool
	ScansForUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]models.ScanEvent, error)
}

// PresenceIndex resolves day-level attendance coverage for many facilitators
// with a single bulk scan query instead of one lookup per appointment.
type PresenceIndex struct {
	scans      ScanSource
	defaultLoc *time.Location
	logger     *zap.Logger
}

// NewPresenceIndex constructs the index. The default time zone is used for
// facilitators without a configured zone.
func NewPresenceIndex(scans ScanSource, defaultTimezone string, logger *zap.Logger) *PresenceIndex {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil || defaultTimezone == "" {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenceIndex{scans: scans, defaultLoc: loc, logger: logger}
}

// Build returns, per facilitator, the subset of requested day keys with scan
// evidence. It returns appErrors.ErrScanSourceUnavailable when the scan
// integration is structurally absent; a transient query fault degrades to an
// empty map after logging.
func (p *PresenceIndex) Build(ctx context.Context, dayBuckets map[string]map[string]struct{}, timezones map[string]string) (map[string]map[string]struct{}, error) {
	if p == nil || p.scans == nil || !p.scans.Available() {
		return nil, appErrors.ErrScanSourceUnavailable
	}

	presence := make(map[string]map[string]struct{}, len(dayBuckets))
	userIDs := make([]string, 0, len(dayBuckets))
	var minDay, maxDay time.Time
	for facilitatorID, days := range dayBuckets {
		if len(days) == 0 {
			continue
		}
		userIDs = append(userIDs, facilitatorID)
		for day := range days {
			parsed, err := time.ParseInLocation(dayKeyLayout, day, time.UTC)
			if err != nil {
				continue
			}
			if minDay.IsZero() || parsed.Before(minDay) {
				minDay = parsed
			}
			if maxDay.IsZero() || parsed.After(maxDay) {
				maxDay = parsed
			}
		}
	}
	if len(userIDs) == 0 || minDay.IsZero() {
		return presence, nil
	}
	sort.Strings(userIDs)

	// One day of slack on each side keeps every zone offset inside the
	// covering range.
	from := minDay.AddDate(0, 0, -1)
	to := maxDay.AddDate(0, 0, 2)

	events, err := p.scans.ScansForUsers(ctx, userIDs, from, to)
	if err != nil {
		p.logger.Warn("presence scan query failed", zap.Error(err))
		return presence, nil
	}

	for _, event := range events {
		requested, ok := dayBuckets[event.UserID]
		if !ok {
			continue
		}
		day := event.ScannedAt.In(p.locationFor(timezones[event.UserID])).Format(dayKeyLayout)
		if _, wanted := requested[day]; !wanted {
			continue
		}
		bucket, ok := presence[event.UserID]
		if !ok {
			bucket = make(map[string]struct{})
			presence[event.UserID] = bucket
		}
		bucket[day] = struct{}{}
	}
	return presence, nil
}

func (p *PresenceIndex) locationFor(timezone string) *time.Location {
	if timezone == "" {
		return p.defaultLoc
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return p.defaultLoc
	}
	return loc
}
