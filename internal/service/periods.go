package service

import (
	"fmt"
	"math"
	"time"
)

// Business calendar helpers. All period boundaries are computed in the
// business timezone so that "this week" and "this month" match the French
// calendar regardless of server locale, with weeks starting on Monday.

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

type periods struct {
	loc *time.Location
}

func newPeriods(loc *time.Location) periods {
	if loc == nil {
		loc = time.UTC
	}
	return periods{loc: loc}
}

// startOfDay truncates t to midnight in the business timezone
func (p periods) startOfDay(t time.Time) time.Time {
	t = t.In(p.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}

// startOfWeek returns the Monday 00:00 of t's week
func (p periods) startOfWeek(t time.Time) time.Time {
	day := p.startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// startOfMonth returns the first day 00:00 of t's month
func (p periods) startOfMonth(t time.Time) time.Time {
	t = t.In(p.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, p.loc)
}

// startOfQuarter returns the first day 00:00 of t's quarter
func (p periods) startOfQuarter(t time.Time) time.Time {
	t = t.In(p.loc)
	quarterMonth := time.Month(((int(t.Month())-1)/3)*3 + 1)
	return time.Date(t.Year(), quarterMonth, 1, 0, 0, 0, 0, p.loc)
}

// startOfYear returns January 1st 00:00 of t's year
func (p periods) startOfYear(t time.Time) time.Time {
	t = t.In(p.loc)
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, p.loc)
}

// monthKey formats t as an ISO month key, e.g. "2026-08"
func (p periods) monthKey(t time.Time) string {
	return t.In(p.loc).Format("2006-01")
}

// monthLabel formats t as a French month label, e.g. "août 2026"
func (p periods) monthLabel(t time.Time) string {
	t = t.In(p.loc)
	return fmt.Sprintf("%s %d", frenchMonths[int(t.Month())-1], t.Year())
}

// monthsBetween counts the whole calendar months from the month of `from`
// through the month of `to`, inclusive. Returns at least 1 when from <= to.
func (p periods) monthsBetween(from, to time.Time) int {
	from = p.startOfMonth(from)
	to = p.startOfMonth(to)
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	return months + 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
