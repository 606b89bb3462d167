package transform

import (
	"math"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

const referenceDay = 15

// MarkReferenceWeeks flags, for every (year, month) group, the single row whose
// date lies closest to the 15th of its month. Equidistant rows resolve to the
// earliest date, then to the first row.
func MarkReferenceWeeks(t *domain.Table, dateCol string) ([]bool, error) {
	if err := t.Require(dateCol, domain.ColumnYear, domain.ColumnMonth); err != nil {
		return nil, err
	}
	dates, err := t.Dates(dateCol)
	if err != nil {
		return nil, err
	}
	years, err := t.Ints(domain.ColumnYear)
	if err != nil {
		return nil, err
	}
	months, err := t.Ints(domain.ColumnMonth)
	if err != nil {
		return nil, err
	}

	// first pass: pick a winner per group
	best := make(map[yearMonth]int)
	for i, d := range dates {
		key := yearMonth{year: years[i], month: time.Month(months[i])}
		j, seen := best[key]
		if !seen || closerToReference(d, dates[j]) {
			best[key] = i
		}
	}

	// second pass: flag winners
	flags := make([]bool, len(dates))
	for _, i := range best {
		flags[i] = true
	}
	return flags, nil
}

func closerToReference(candidate, current time.Time) bool {
	dc, dr := referenceDistance(candidate), referenceDistance(current)
	if dc != dr {
		return dc < dr
	}
	return candidate.Before(current)
}

func referenceDistance(d time.Time) int {
	dist := d.Day() - referenceDay
	if dist < 0 {
		return -dist
	}
	return dist
}

// InterpolateReferenceWeeks keeps only the reference-week value of each month
// and rebuilds the remaining weeks by linear interpolation over row position.
// Rows before the first or after the last known value take that value. The
// table is sorted by date before anything else happens.
func InterpolateReferenceWeeks(t *domain.Table, dateCol, valueCol string) (*domain.Table, error) {
	if err := t.Require(dateCol, valueCol, domain.ColumnYear, domain.ColumnMonth); err != nil {
		return nil, err
	}
	sorted, err := t.SortByDate(dateCol)
	if err != nil {
		return nil, err
	}
	flags, err := MarkReferenceWeeks(sorted, dateCol)
	if err != nil {
		return nil, err
	}
	values, err := sorted.Floats(valueCol)
	if err != nil {
		return nil, err
	}

	masked := make([]float64, len(values))
	for i, v := range values {
		if flags[i] {
			masked[i] = v
		} else {
			masked[i] = nan()
		}
	}

	if err := sorted.SetFloats(valueCol, interpolateLinear(masked)); err != nil {
		return nil, err
	}
	return sorted, nil
}

// MonthlyToWeekly upscales a monthly series and smooths it through the
// reference weeks.
func MonthlyToWeekly(t *domain.Table, dateCol, valueCol string) (*domain.Table, error) {
	weekly, err := UpscaleMonthlyToWeekly(t, dateCol, valueCol)
	if err != nil {
		return nil, err
	}
	return InterpolateReferenceWeeks(weekly, dateCol, valueCol)
}

// interpolateLinear returns a copy with NaN gaps filled. With no known values
// the result stays all NaN.
func interpolateLinear(values []float64) []float64 {
	out := append([]float64(nil), values...)

	var known []int
	for i, v := range out {
		if !math.IsNaN(v) {
			known = append(known, i)
		}
	}
	if len(known) == 0 {
		return out
	}

	first, last := known[0], known[len(known)-1]
	for i := 0; i < first; i++ {
		out[i] = out[first]
	}
	for i := last + 1; i < len(out); i++ {
		out[i] = out[last]
	}
	for k := 1; k < len(known); k++ {
		lo, hi := known[k-1], known[k]
		step := (out[hi] - out[lo]) / float64(hi-lo)
		for i := lo + 1; i < hi; i++ {
			out[i] = out[lo] + step*float64(i-lo)
		}
	}
	return out
}
