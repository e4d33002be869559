package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/facilitator-analytics/internal/models"
)

func TestBuildArrivalWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	window := BuildArrivalWindow(&start, &end, 30*time.Minute, "Europe/Berlin")
	require.NotNil(t, window)
	assert.Equal(t, start.Add(-30*time.Minute), window.Start)
	assert.Equal(t, end, window.End)
	assert.Equal(t, "Europe/Berlin", window.Timezone)
}

func TestBuildArrivalWindowMissingEndpoints(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	var zero time.Time

	assert.Nil(t, BuildArrivalWindow(nil, &start, 30*time.Minute, ""))
	assert.Nil(t, BuildArrivalWindow(&start, nil, 30*time.Minute, ""))
	assert.Nil(t, BuildArrivalWindow(&zero, &start, 30*time.Minute, ""))
	assert.Nil(t, BuildArrivalWindow(&start, &zero, 30*time.Minute, ""))
}

func TestClassifyArrival(t *testing.T) {
	scheduledStart := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduledEnd := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	grace := 10 * time.Minute
	window := models.ArrivalWindow{Start: scheduledStart.Add(-30 * time.Minute), End: scheduledEnd}

	ts := func(offset time.Duration) *time.Time {
		at := scheduledStart.Add(offset)
		return &at
	}

	tests := []struct {
		name     string
		scanAt   *time.Time
		expected models.ArrivalStatus
	}{
		{name: "no scan", scanAt: nil, expected: models.ArrivalMissed},
		{name: "before window", scanAt: ts(-31 * time.Minute), expected: models.ArrivalMissed},
		{name: "window open", scanAt: ts(-30 * time.Minute), expected: models.ArrivalOnTime},
		{name: "exactly at start", scanAt: ts(0), expected: models.ArrivalOnTime},
		{name: "one second after start", scanAt: ts(time.Second), expected: models.ArrivalLateGrace},
		{name: "exactly at grace boundary", scanAt: ts(grace), expected: models.ArrivalLateGrace},
		{name: "one second past grace", scanAt: ts(grace + time.Second), expected: models.ArrivalLate},
		{name: "at scheduled end", scanAt: ts(time.Hour), expected: models.ArrivalLate},
		{name: "after window", scanAt: ts(time.Hour + time.Second), expected: models.ArrivalMissed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyArrival(window, scheduledStart, tc.scanAt, grace))
		})
	}
}

func TestEarliestScanInWindow(t *testing.T) {
	window := models.ArrivalWindow{
		Start: time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	}
	outside := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	second := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	first := time.Date(2025, 3, 10, 8, 45, 0, 0, time.UTC)

	earliest := EarliestScanInWindow([]time.Time{outside, second, first}, window)
	require.NotNil(t, earliest)
	assert.Equal(t, first, *earliest)

	assert.Nil(t, EarliestScanInWindow([]time.Time{outside}, window))
	assert.Nil(t, EarliestScanInWindow(nil, window))
}
