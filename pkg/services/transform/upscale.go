package transform

import (
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

const (
	// A month is treated as 30 days split into 4 weeks when a daily rate is
	// scaled back up to a weekly total.
	approxDaysPerMonth  = 30.0
	approxWeeksPerMonth = 4.0

	upscaleHorizon = 28 * 24 * time.Hour
)

// UpscaleMonthlyToWeekly spreads monthly totals onto Friday anchors running from
// the first input date to four weeks past the last one. Each anchor carries the
// daily rate of its month scaled by 30/4. Anchors in months absent from the
// input get NaN. Rows sharing a month are summed first.
func UpscaleMonthlyToWeekly(t *domain.Table, dateCol, valueCol string) (*domain.Table, error) {
	if err := t.Require(dateCol, valueCol); err != nil {
		return nil, err
	}
	dates, err := t.Dates(dateCol)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(valueCol)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return weeklyTable(dateCol, valueCol, nil, nil)
	}

	totals := make(map[yearMonth]float64)
	first, last := dates[0], dates[0]
	for i, d := range dates {
		totals[monthOf(d)] += values[i]
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	anchors := FridayAnchors(first, last.Add(upscaleHorizon))
	weekly := make([]float64, len(anchors))
	for i, a := range anchors {
		key := monthOf(a)
		total, ok := totals[key]
		if !ok {
			weekly[i] = nan()
			continue
		}
		rate := total / float64(DaysInMonth(key.year, key.month))
		weekly[i] = rate * approxDaysPerMonth / approxWeeksPerMonth
	}
	return weeklyTable(dateCol, valueCol, anchors, weekly)
}

func weeklyTable(dateCol, valueCol string, dates []time.Time, values []float64) (*domain.Table, error) {
	if dates == nil {
		dates = []time.Time{}
		values = []float64{}
	}
	out := domain.NewTable(len(dates))
	if err := out.SetDates(dateCol, dates); err != nil {
		return nil, err
	}
	if err := out.SetFloats(valueCol, values); err != nil {
		return nil, err
	}
	return WithCalendarColumns(out, dateCol)
}
