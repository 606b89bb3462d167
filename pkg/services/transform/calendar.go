// Package transform reconciles daily, weekly and monthly series onto a common
// Friday-anchored weekly calendar. Every operation is pure and returns a new table.
package transform

import (
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

// DaysInMonth returns the calendar length of the month, leap years included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SundayWeekOfYear numbers weeks the way strftime %U does: the first Sunday of
// the year opens week 1 and any earlier days belong to week 0.
func SundayWeekOfYear(t time.Time) int {
	return (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
}

// WeekEndingFriday returns the Friday closing the Saturday-to-Friday week that
// contains t. A Friday maps to itself.
func WeekEndingFriday(t time.Time) time.Time {
	d := domain.Day(t)
	offset := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// FridayAnchors lists every Friday in [start, end].
func FridayAnchors(start, end time.Time) []time.Time {
	end = domain.Day(end)
	var out []time.Time
	for d := WeekEndingFriday(start); !d.After(end); d = d.AddDate(0, 0, 7) {
		out = append(out, d)
	}
	return out
}

type yearMonth struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) yearMonth {
	return yearMonth{year: t.Year(), month: t.Month()}
}
