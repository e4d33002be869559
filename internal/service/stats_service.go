package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/atelierhq/facilitator-analytics/internal/models"
	appErrors "github.com/atelierhq/facilitator-analytics/pkg/errors"
)

type appointmentSource interface {
	// ListForSummary returns matching records plus whether date bounds were
	// pushed into the query. When they were not, the service filters in
	// memory with identical results.
	ListForSummary(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentRecord, bool, error)
}

type profileSource interface {
	FindByFacilitator(ctx context.Context, facilitatorID string) (*models.FacilitatorProfile, error)
}

type presenceBuilder interface {
	Build(ctx context.Context, dayBuckets map[string]map[string]struct{}, timezones map[string]string) (map[string]map[string]struct{}, error)
}

// StatsServiceConfig tunes the activity engine.
type StatsServiceConfig struct {
	CacheTTL         time.Duration
	GraceMinutes     int
	PreWindowMinutes int
	DefaultTimezone  string
}

// StatsService scans appointment records, buckets them per facilitator, and
// derives counts, breakdowns, and elapsed-time-normalised rates. Results are
// cached under an exact fingerprint of the request.
type StatsService struct {
	appointments appointmentSource
	profiles     profileSource
	presence     presenceBuilder
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
	cfg          StatsServiceConfig
}

// StatsServiceParams groups constructor dependencies.
type StatsServiceParams struct {
	Appointments appointmentSource
	Profiles     profileSource
	Presence     presenceBuilder
	Cache        *CacheService
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Config       StatsServiceConfig
}

// NewStatsService constructs a StatsService with sane defaults.
func NewStatsService(params StatsServiceParams) *StatsService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.GraceMinutes <= 0 {
		cfg.GraceMinutes = 10
	}
	if cfg.PreWindowMinutes <= 0 {
		cfg.PreWindowMinutes = 30
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "UTC"
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		appointments: params.Appointments,
		profiles:     params.Profiles,
		presence:     params.Presence,
		cache:        params.Cache,
		metrics:      params.Metrics,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
	}
}

// SummaryRequest enumerates the supported summarize options.
type SummaryRequest struct {
	Start               *time.Time `json:"start"`
	End                 *time.Time `json:"end"`
	HostID              string     `json:"host_id"`
	Purpose             string     `json:"purpose"`
	IncludeCancelled    bool       `json:"include_cancelled"`
	UseFacilitatorTerms bool       `json:"use_facilitator_terms"`
}

// Summarize computes (or serves from cache) the activity summary for the
// requested window and options. The boolean indicates a cache hit; a hit
// bypasses the scan entirely. A storage fault degrades to the empty summary
// rather than propagating, since statistics are advisory.
func (s *StatsService) Summarize(ctx context.Context, req SummaryRequest) (*models.SummaryResult, bool, error) {
	if req.Start != nil && req.End != nil && req.Start.After(*req.End) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "start must not be after end")
	}
	now := s.now().UTC()

	key := summaryCacheKey(req)
	if s.cache != nil {
		var cached models.SummaryResult
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	filter := models.AppointmentFilter{
		HostID:           req.HostID,
		Purpose:          req.Purpose,
		IncludeCancelled: req.IncludeCancelled,
		DateFrom:         req.Start,
		DateTo:           req.End,
	}
	start := time.Now()
	records, datesPushedDown, err := s.appointments.ListForSummary(ctx, filter)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("appointments_summary", time.Since(start))
	}
	if err != nil {
		s.logger.Error("appointment scan failed, returning empty summary", zap.Error(err))
		return s.emptySummary(now), false, nil
	}

	summary := s.aggregate(ctx, records, req, now, datesPushedDown)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("summary cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return summary, false, nil
}

type termInfo struct {
	term     *models.TimeInterval
	timezone string
}

type facilitatorBucket struct {
	appointments  int
	badgeSessions int
	badgeRefs     int
	attendees     int
	feedback      int
	cancels       int
	purpose       map[string]int
	result        map[string]int
	status        map[string]int
	arrival       map[string]int
	days          map[string]struct{}
	last          *time.Time
}

func (s *StatsService) aggregate(ctx context.Context, records []models.AppointmentRecord, req SummaryRequest, now time.Time, datesPushedDown bool) *models.SummaryResult {
	result := s.emptySummary(now)

	filterInMemory := !datesPushedDown && (req.Start != nil || req.End != nil)
	if filterInMemory {
		s.logger.Warn("appointment store has no queryable date field, filtering in memory")
		result.DatesFilteredInMemory = true
	}

	buckets := make(map[string]*facilitatorBucket)
	terms := make(map[string]termInfo)

	for _, rec := range records {
		if rec.HostID == "" {
			continue
		}
		if filterInMemory && !withinBounds(rec.StartsAt, req.Start, req.End) {
			continue
		}

		info := s.termFor(ctx, rec.HostID, terms)
		if req.UseFacilitatorTerms && info.term != nil {
			if rec.StartsAt == nil {
				continue
			}
			upper := info.term.End
			if upper.After(now) {
				upper = now
			}
			if rec.StartsAt.Before(info.term.Start) || rec.StartsAt.After(upper) {
				continue
			}
		}

		bucket, ok := buckets[rec.HostID]
		if !ok {
			bucket = newFacilitatorBucket()
			buckets[rec.HostID] = bucket
		}

		bucket.appointments++
		if n := len(rec.BadgeIDs); n > 0 {
			bucket.badgeSessions++
			bucket.badgeRefs += n
		}
		bucket.attendees += attendeeCount(rec)
		if hasFeedback(rec) {
			bucket.feedback++
		}
		if rec.Status == models.StatusCanceled {
			bucket.cancels++
		}
		bump(bucket.purpose, rec.Purpose)
		bump(bucket.result, rec.Result)
		bump(bucket.status, rec.Status)
		if rec.ArrivalStatus != nil {
			bump(bucket.arrival, *rec.ArrivalStatus)
		}
		if rec.StartsAt != nil {
			day := rec.StartsAt.In(s.locationFor(info.timezone)).Format(dayKeyLayout)
			bucket.days[day] = struct{}{}
			if bucket.last == nil || rec.StartsAt.After(*bucket.last) {
				last := *rec.StartsAt
				bucket.last = &last
			}
		}
	}

	dayBuckets := make(map[string]map[string]struct{}, len(buckets))
	timezones := make(map[string]string, len(buckets))
	for id, bucket := range buckets {
		dayBuckets[id] = bucket.days
		timezones[id] = terms[id].timezone
	}

	var presence map[string]map[string]struct{}
	presenceAvailable := false
	if s.presence != nil && len(dayBuckets) > 0 {
		built, err := s.presence.Build(ctx, dayBuckets, timezones)
		if err != nil {
			if !errors.Is(err, appErrors.ErrScanSourceUnavailable) {
				s.logger.Warn("presence index failed", zap.Error(err))
			}
		} else {
			presence = built
			presenceAvailable = true
		}
	}

	totalArrivalDays := 0
	totalActiveDays := 0
	for id, bucket := range buckets {
		fs := &models.FacilitatorSummary{
			FacilitatorID:     id,
			Appointments:      bucket.appointments,
			BadgeSessions:     bucket.badgeSessions,
			BadgeReferences:   bucket.badgeRefs,
			Attendees:         bucket.attendees,
			FeedbackCount:     bucket.feedback,
			Cancellations:     bucket.cancels,
			PurposeBreakdown:  bucket.purpose,
			ResultBreakdown:   bucket.result,
			StatusBreakdown:   bucket.status,
			ArrivalBreakdown:  bucket.arrival,
			ActiveDays:        len(bucket.days),
			LastAppointmentAt: bucket.last,
		}

		info := terms[id]
		if info.term != nil {
			termStart := info.term.Start
			termEnd := info.term.End
			fs.TermStart = &termStart
			fs.TermEnd = &termEnd
		}

		if presenceAvailable {
			arrivalDays := len(presence[id])
			fs.ArrivalDays = &arrivalDays
			if fs.ActiveDays > 0 {
				rate := round1(float64(arrivalDays) / float64(fs.ActiveDays) * 100)
				fs.ArrivalRate = &rate
			}
			totalArrivalDays += arrivalDays
			totalActiveDays += fs.ActiveDays
		}

		if rateStart, rateEnd, ok := s.rateWindow(info, req, now); ok {
			elapsedDays := rateEnd.Sub(rateStart).Seconds() / 86400
			if elapsedDays < 1 {
				elapsedDays = 1
			}
			weeks := elapsedDays / 7
			if weeks < 1 {
				weeks = 1
			}
			months := elapsedDays / 30.4375
			if months < 1 {
				months = 1
			}
			perWeek := round2(float64(bucket.appointments) / weeks)
			perMonth := round2(float64(bucket.appointments) / months)
			fs.AppointmentsPerWeek = &perWeek
			fs.AppointmentsPerMonth = &perMonth
		}

		result.Facilitators[id] = fs

		result.TotalAppointments += bucket.appointments
		result.BadgeSessions += bucket.badgeSessions
		result.BadgeReferences += bucket.badgeRefs
		result.TotalAttendees += bucket.attendees
		result.FeedbackCount += bucket.feedback
		result.Cancellations += bucket.cancels
		mergeBreakdown(result.PurposeBreakdown, bucket.purpose)
		mergeBreakdown(result.ResultBreakdown, bucket.result)
		mergeBreakdown(result.StatusBreakdown, bucket.status)
		mergeBreakdown(result.ArrivalBreakdown, bucket.arrival)
	}

	if result.TotalAppointments > 0 {
		result.FeedbackRate = round1(float64(result.FeedbackCount) / float64(result.TotalAppointments) * 100)
	}
	if presenceAvailable && totalActiveDays > 0 {
		global := round1(float64(totalArrivalDays) / float64(totalActiveDays) * 100)
		result.ArrivalRate = &global
	}

	result.FacilitatorRateAverages = models.RateAverages{
		AppointmentsPerWeek:  averageRate(result.Facilitators, func(f *models.FacilitatorSummary) *float64 { return f.AppointmentsPerWeek }),
		AppointmentsPerMonth: averageRate(result.Facilitators, func(f *models.FacilitatorSummary) *float64 { return f.AppointmentsPerMonth }),
		ArrivalRate:          averageRate(result.Facilitators, func(f *models.FacilitatorSummary) *float64 { return f.ArrivalRate }),
	}

	return result
}

// rateWindow picks the elapsed-time normalisation range: the facilitator's
// term clamped to now when one exists, else the global bounds when both are
// given.
func (s *StatsService) rateWindow(info termInfo, req SummaryRequest, now time.Time) (time.Time, time.Time, bool) {
	if info.term != nil {
		end := info.term.End
		if end.After(now) {
			end = now
		}
		return info.term.Start, end, true
	}
	if req.Start != nil && req.End != nil {
		return *req.Start, *req.End, true
	}
	return time.Time{}, time.Time{}, false
}

func (s *StatsService) termFor(ctx context.Context, facilitatorID string, cache map[string]termInfo) termInfo {
	if info, ok := cache[facilitatorID]; ok {
		return info
	}
	info := termInfo{timezone: s.cfg.DefaultTimezone}
	if s.profiles != nil {
		profile, err := s.profiles.FindByFacilitator(ctx, facilitatorID)
		if err != nil {
			s.logger.Warn("facilitator profile lookup failed", zap.String("facilitator_id", facilitatorID), zap.Error(err))
		} else if profile != nil {
			if profile.Timezone != "" {
				info.timezone = profile.Timezone
			}
			info.term = SelectInterval(profile.Intervals, s.now().UTC())
		}
	}
	cache[facilitatorID] = info
	return info
}

// FacilitatorTerm resolves the single most relevant availability interval
// for one facilitator.
func (s *StatsService) FacilitatorTerm(ctx context.Context, facilitatorID string) (*models.TimeInterval, error) {
	if strings.TrimSpace(facilitatorID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "facilitator id required")
	}
	if s.profiles == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "profile lookup unavailable")
	}
	profile, err := s.profiles.FindByFacilitator(ctx, facilitatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facilitator profile")
	}
	if profile == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "facilitator profile not found")
	}
	term := SelectInterval(profile.Intervals, s.now().UTC())
	if term == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no availability configured")
	}
	return term, nil
}

// ClassifyArrivalRequest describes a single classification payload.
type ClassifyArrivalRequest struct {
	ScheduledStart *time.Time `json:"scheduled_start" validate:"required"`
	ScheduledEnd   *time.Time `json:"scheduled_end" validate:"required"`
	ScanAt         *time.Time `json:"scan_at"`
	Timezone       string     `json:"timezone"`
}

// Classify builds the arrival window from configured pre-window minutes and
// classifies the supplied scan against it.
func (s *StatsService) Classify(req ClassifyArrivalRequest) (models.ArrivalStatus, *models.ArrivalWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classification payload")
	}
	window := BuildArrivalWindow(req.ScheduledStart, req.ScheduledEnd, time.Duration(s.cfg.PreWindowMinutes)*time.Minute, req.Timezone)
	if window == nil {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "appointment has no usable schedule window")
	}
	status := ClassifyArrival(*window, *req.ScheduledStart, req.ScanAt, time.Duration(s.cfg.GraceMinutes)*time.Minute)
	return status, window, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *StatsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *StatsService) emptySummary(now time.Time) *models.SummaryResult {
	return &models.SummaryResult{
		PurposeBreakdown: map[string]int{},
		ResultBreakdown:  map[string]int{},
		StatusBreakdown:  map[string]int{},
		ArrivalBreakdown: map[string]int{},
		Facilitators:     map[string]*models.FacilitatorSummary{},
		GeneratedAt:      now,
	}
}

func (s *StatsService) locationFor(timezone string) *time.Location {
	if timezone == "" {
		timezone = s.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func newFacilitatorBucket() *facilitatorBucket {
	return &facilitatorBucket{
		purpose: map[string]int{},
		result:  map[string]int{},
		status:  map[string]int{},
		arrival: map[string]int{},
		days:    map[string]struct{}{},
	}
}

// attendeeCount treats the host as an implicit attendee even when the list
// omits them, plus one per distinct non-host attendee.
func attendeeCount(rec models.AppointmentRecord) int {
	count := 1
	seen := make(map[string]struct{}, len(rec.AttendeeIDs))
	for _, id := range rec.AttendeeIDs {
		if id == "" || id == rec.HostID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		count++
	}
	return count
}

func hasFeedback(rec models.AppointmentRecord) bool {
	if strings.TrimSpace(rec.Result) != "" {
		return true
	}
	return rec.Feedback != nil && strings.TrimSpace(*rec.Feedback) != ""
}

func withinBounds(at *time.Time, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if at == nil {
		return false
	}
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && at.After(*to) {
		return false
	}
	return true
}

func bump(breakdown map[string]int, tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	breakdown[tag]++
}

func mergeBreakdown(dst, src map[string]int) {
	for tag, count := range src {
		dst[tag] += count
	}
}

func averageRate(facilitators map[string]*models.FacilitatorSummary, pick func(*models.FacilitatorSummary) *float64) *float64 {
	var total float64
	var count int
	for _, fs := range facilitators {
		if value := pick(fs); value != nil {
			total += *value
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := round2(total / float64(count))
	return &avg
}

func summaryCacheKey(req SummaryRequest) string {
	return makeStatsCacheKey(
		"summary",
		"host="+req.HostID,
		"purpose="+req.Purpose,
		"from="+formatTime(req.Start),
		"to="+formatTime(req.End),
		fmt.Sprintf("cancelled=%t", req.IncludeCancelled),
		fmt.Sprintf("terms=%t", req.UseFacilitatorTerms),
	)
}

// makeStatsCacheKey joins every part, labels included, so that two requests
// differing only in which field carries a value never share a key.
func makeStatsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("stats")
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
