package transform

import (
	"math"
	"sort"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

// DownscaleDailyToWeekly averages a daily series into Saturday-to-Friday weeks
// dated at their closing Friday. NaN values are skipped, a week holding only
// NaN yields NaN and weeks without rows are left out.
func DownscaleDailyToWeekly(t *domain.Table, dateCol, valueCol string) (*domain.Table, error) {
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

	buckets := make(map[time.Time]*meanAcc)
	for i, d := range dates {
		key := WeekEndingFriday(d)
		acc, ok := buckets[key]
		if !ok {
			acc = &meanAcc{}
			buckets[key] = acc
		}
		acc.add(values[i])
	}

	weeks := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		weeks = append(weeks, k)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	means := make([]float64, len(weeks))
	for i, w := range weeks {
		means[i] = buckets[w].mean()
	}

	out := domain.NewTable(len(weeks))
	if err := out.SetDates(dateCol, weeks); err != nil {
		return nil, err
	}
	if err := out.SetFloats(valueCol, means); err != nil {
		return nil, err
	}
	return out, nil
}

// meanAcc is a running mean that ignores NaN but lets ±Inf through.
type meanAcc struct {
	sum   float64
	count int
}

func (a *meanAcc) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	a.sum += v
	a.count++
}

func (a *meanAcc) mean() float64 {
	if a.count == 0 {
		return nan()
	}
	return a.sum / float64(a.count)
}

func nan() float64 {
	return math.NaN()
}
