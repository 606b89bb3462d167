package transform

import (
	"sort"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

// DeviationFromYearlyAverage adds year, yearly_avg and deviation columns, where
// deviation is the percent difference of each value from the mean of its year.
// A zero yearly mean produces NaN or ±Inf rather than an error.
func DeviationFromYearlyAverage(t *domain.Table, dateCol, valueCol string) (*domain.Table, error) {
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

	years := make([]int, len(dates))
	perYear := make(map[int]*meanAcc)
	for i, d := range dates {
		years[i] = d.Year()
		acc, ok := perYear[years[i]]
		if !ok {
			acc = &meanAcc{}
			perYear[years[i]] = acc
		}
		acc.add(values[i])
	}

	avgs := make([]float64, len(dates))
	deviations := make([]float64, len(dates))
	for i, y := range years {
		avgs[i] = perYear[y].mean()
		deviations[i] = (values[i]/avgs[i] - 1) * 100
	}

	out := t.Clone()
	if err := out.SetInts(domain.ColumnYear, years); err != nil {
		return nil, err
	}
	if err := out.SetFloats(domain.ColumnYearlyAvg, avgs); err != nil {
		return nil, err
	}
	if err := out.SetFloats(domain.ColumnDeviation, deviations); err != nil {
		return nil, err
	}
	return out, nil
}

// SeasonalDeviationByWeek averages the yearly-average deviation of each row
// across years by Sunday-count week of year. The result has one row per week,
// sorted by week.
func SeasonalDeviationByWeek(t *domain.Table, dateCol, valueCol string) (*domain.Table, error) {
	withDev, err := DeviationFromYearlyAverage(t, dateCol, valueCol)
	if err != nil {
		return nil, err
	}
	dates, err := withDev.Dates(dateCol)
	if err != nil {
		return nil, err
	}
	deviations, err := withDev.Floats(domain.ColumnDeviation)
	if err != nil {
		return nil, err
	}

	perWeek := make(map[int]*meanAcc)
	for i, d := range dates {
		w := SundayWeekOfYear(d)
		acc, ok := perWeek[w]
		if !ok {
			acc = &meanAcc{}
			perWeek[w] = acc
		}
		acc.add(deviations[i])
	}

	weeks := make([]int, 0, len(perWeek))
	for w := range perWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	means := make([]float64, len(weeks))
	for i, w := range weeks {
		means[i] = perWeek[w].mean()
	}

	out := domain.NewTable(len(weeks))
	if err := out.SetInts(domain.ColumnWeek, weeks); err != nil {
		return nil, err
	}
	if err := out.SetFloats(domain.ColumnDeviation, means); err != nil {
		return nil, err
	}
	return out, nil
}
