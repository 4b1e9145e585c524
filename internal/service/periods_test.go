package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parisLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return loc
}

func TestStartOfWeekIsMonday(t *testing.T) {
	p := newPeriods(parisLocation(t))

	// Friday 2026-08-28
	friday := time.Date(2026, 8, 28, 15, 30, 0, 0, p.loc)
	weekStart := p.startOfWeek(friday)

	assert.Equal(t, time.Monday, weekStart.Weekday())
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, p.loc), weekStart)

	// A Monday stays on the same day
	assert.Equal(t, weekStart, p.startOfWeek(weekStart.Add(5*time.Minute)))

	// Sunday belongs to the week started the previous Monday
	sunday := time.Date(2026, 8, 30, 23, 0, 0, 0, p.loc)
	assert.Equal(t, weekStart, p.startOfWeek(sunday))
}

func TestPeriodBoundaries(t *testing.T) {
	p := newPeriods(parisLocation(t))
	reference := time.Date(2026, 8, 29, 10, 0, 0, 0, p.loc)

	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, p.loc), p.startOfMonth(reference))
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, p.loc), p.startOfQuarter(reference))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, p.loc), p.startOfYear(reference))
}

func TestBoundariesUseBusinessTimezone(t *testing.T) {
	p := newPeriods(parisLocation(t))

	// 23:30 UTC on the 31st is already the 1st in Paris
	utcEvening := time.Date(2026, 7, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, p.loc), p.startOfMonth(utcEvening))
}

func TestMonthKeyAndLabel(t *testing.T) {
	p := newPeriods(parisLocation(t))
	august := time.Date(2026, 8, 15, 0, 0, 0, 0, p.loc)

	assert.Equal(t, "2026-08", p.monthKey(august))
	assert.Equal(t, "août 2026", p.monthLabel(august))
	assert.Equal(t, "janvier 2026", p.monthLabel(time.Date(2026, 1, 1, 0, 0, 0, 0, p.loc)))
}

func TestMonthsBetween(t *testing.T) {
	p := newPeriods(parisLocation(t))

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, p.loc)
	aug := time.Date(2026, 8, 29, 0, 0, 0, 0, p.loc)

	assert.Equal(t, 8, p.monthsBetween(jan, aug))
	assert.Equal(t, 1, p.monthsBetween(jan, jan))
	assert.Equal(t, 0, p.monthsBetween(aug, jan))

	// Across a year boundary
	dec := time.Date(2025, 12, 10, 0, 0, 0, 0, p.loc)
	assert.Equal(t, 2, p.monthsBetween(dec, jan))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 12.35, round2(12.346))
	assert.Equal(t, 12.3, round1(12.34))
	assert.Equal(t, -2.5, round1(-2.45))
	assert.Equal(t, 0.0, round2(0))
}
