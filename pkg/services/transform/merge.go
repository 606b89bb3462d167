package transform

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

var (
	ErrDuplicateColumn = errors.New("duplicate series column")
	ErrDuplicateDate   = errors.New("duplicate date")
)

// WithCalendarColumns returns a copy with integer year, month and week columns
// derived from dateCol. Week follows SundayWeekOfYear.
func WithCalendarColumns(t *domain.Table, dateCol string) (*domain.Table, error) {
	if err := t.Require(dateCol); err != nil {
		return nil, err
	}
	dates, err := t.Dates(dateCol)
	if err != nil {
		return nil, err
	}

	years := make([]int, len(dates))
	months := make([]int, len(dates))
	weeks := make([]int, len(dates))
	for i, d := range dates {
		years[i] = d.Year()
		months[i] = int(d.Month())
		weeks[i] = SundayWeekOfYear(d)
	}

	out := t.Clone()
	if err := out.SetInts(domain.ColumnYear, years); err != nil {
		return nil, err
	}
	if err := out.SetInts(domain.ColumnMonth, months); err != nil {
		return nil, err
	}
	if err := out.SetInts(domain.ColumnWeek, weeks); err != nil {
		return nil, err
	}
	return out, nil
}

// MergeOnDate full-outer-joins tables on dateCol. Every non-date column of every
// input becomes a float column of the result, NaN where its table has no row
// for that date. Rows are sorted by date.
func MergeOnDate(dateCol string, tables ...*domain.Table) (*domain.Table, error) {
	for _, t := range tables {
		if err := t.Require(dateCol); err != nil {
			return nil, err
		}
	}

	type series struct {
		name   string
		values map[time.Time]float64
	}

	seen := make(map[string]bool)
	all := make(map[time.Time]struct{})
	var merged []series
	for _, t := range tables {
		dates, err := t.Dates(dateCol)
		if err != nil {
			return nil, err
		}
		for _, name := range t.Columns() {
			if name == dateCol {
				continue
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
			}
			seen[name] = true

			values, err := t.Floats(name)
			if err != nil {
				return nil, err
			}
			s := series{name: name, values: make(map[time.Time]float64, len(dates))}
			for i, d := range dates {
				if _, dup := s.values[d]; dup {
					return nil, fmt.Errorf("%w: %s in column %q", ErrDuplicateDate, d.Format(time.DateOnly), name)
				}
				s.values[d] = values[i]
			}
			merged = append(merged, s)
		}
		for _, d := range dates {
			all[d] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(all))
	for d := range all {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := domain.NewTable(len(dates))
	if err := out.SetDates(dateCol, dates); err != nil {
		return nil, err
	}
	for _, s := range merged {
		col := make([]float64, len(dates))
		for i, d := range dates {
			v, ok := s.values[d]
			if !ok {
				v = nan()
			}
			col[i] = v
		}
		if err := out.SetFloats(s.name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}
