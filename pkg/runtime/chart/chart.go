// Package chart renders weekly tables as xlsx workbooks with line charts.
package chart

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const (
	DataSheet   = "data"
	chartAnchor = "H2"
)

type cell struct {
	sum   float64
	count int
}

type Options struct {
	Title string
	// XColumn is a date or integer column. Defaults to period.
	XColumn string
	// Columns limits the plotted series. Empty means every float column.
	Columns []string
}

// WriteLineChart writes the table to a data sheet and adds a line chart with
// one line per series column against XColumn.
func WriteLineChart(w io.Writer, table *domain.Table, opts Options) error {
	if opts.XColumn == "" {
		opts.XColumn = domain.ColumnPeriod
	}
	columns := opts.Columns
	if len(columns) == 0 {
		for _, name := range table.Columns() {
			if kind, _ := table.Kind(name); kind == domain.FloatColumn {
				columns = append(columns, name)
			}
		}
	}
	if err := table.Require(append([]string{opts.XColumn}, columns...)...); err != nil {
		return err
	}

	labels, err := axisLabels(table, opts.XColumn)
	if err != nil {
		return err
	}

	series := make([][]float64, len(columns))
	for i, name := range columns {
		if series[i], err = table.Floats(name); err != nil {
			return err
		}
	}

	return write(w, opts.Title, opts.XColumn, labels, columns, series)
}

// WriteYearOverlay pivots valueCol by week of year, one line per year, so
// seasons can be compared across years. Duplicate (year, week) rows are
// averaged.
func WriteYearOverlay(w io.Writer, table *domain.Table, valueCol string) error {
	if err := table.Require(domain.ColumnYear, domain.ColumnWeek, valueCol); err != nil {
		return err
	}
	years, err := table.Ints(domain.ColumnYear)
	if err != nil {
		return err
	}
	weeks, err := table.Ints(domain.ColumnWeek)
	if err != nil {
		return err
	}
	values, err := table.Floats(valueCol)
	if err != nil {
		return err
	}

	grid := make(map[int]map[int]*cell)
	weekSet := make(map[int]bool)
	for i, y := range years {
		if math.IsNaN(values[i]) {
			continue
		}
		if grid[y] == nil {
			grid[y] = make(map[int]*cell)
		}
		c, ok := grid[y][weeks[i]]
		if !ok {
			c = &cell{}
			grid[y][weeks[i]] = c
		}
		c.sum += values[i]
		c.count++
		weekSet[weeks[i]] = true
	}

	sortedYears := sortedKeys(grid)
	sortedWeeks := make([]int, 0, len(weekSet))
	for wk := range weekSet {
		sortedWeeks = append(sortedWeeks, wk)
	}
	sort.Ints(sortedWeeks)

	labels := make([]any, len(sortedWeeks))
	for i, wk := range sortedWeeks {
		labels[i] = wk
	}
	names := make([]string, len(sortedYears))
	series := make([][]float64, len(sortedYears))
	for i, y := range sortedYears {
		names[i] = fmt.Sprint(y)
		series[i] = make([]float64, len(sortedWeeks))
		for j, wk := range sortedWeeks {
			c, ok := grid[y][wk]
			if !ok {
				series[i][j] = math.NaN()
				continue
			}
			series[i][j] = c.sum / float64(c.count)
		}
	}

	return write(w, valueCol, domain.ColumnWeek, labels, names, series)
}

func axisLabels(table *domain.Table, name string) ([]any, error) {
	if kind, _ := table.Kind(name); kind == domain.IntColumn {
		ints, err := table.Ints(name)
		if err != nil {
			return nil, err
		}
		labels := make([]any, len(ints))
		for i, v := range ints {
			labels[i] = v
		}
		return labels, nil
	}
	dates, err := table.Dates(name)
	if err != nil {
		return nil, err
	}
	labels := make([]any, len(dates))
	for i, d := range dates {
		labels[i] = d.Format(time.DateOnly)
	}
	return labels, nil
}

func write(w io.Writer, title, labelHeader string, labels []any, names []string, series [][]float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetCellValue(DataSheet, "A1", labelHeader); err != nil {
		return err
	}
	for i, label := range labels {
		if err := f.SetCellValue(DataSheet, fmt.Sprintf("A%d", i+2), label); err != nil {
			return err
		}
	}

	for j, name := range names {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(DataSheet, col+"1", name); err != nil {
			return err
		}
		for i, v := range series[j] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if err := f.SetCellValue(DataSheet, fmt.Sprintf("%s%d", col, i+2), v); err != nil {
				return err
			}
		}
	}

	if len(labels) > 0 && len(names) > 0 {
		if err := f.AddChart(DataSheet, chartAnchor, lineChart(title, len(labels), names)); err != nil {
			return fmt.Errorf("failed to add chart: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func lineChart(title string, rows int, names []string) *excelize.Chart {
	last := rows + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", DataSheet, last)

	series := make([]excelize.ChartSeries, len(names))
	for j := range names {
		col, _ := excelize.ColumnNumberToName(j + 2)
		series[j] = excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", DataSheet, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", DataSheet, col, col, last),
		}
	}

	c := &excelize.Chart{
		Type:         excelize.Line,
		Series:       series,
		Legend:       excelize.ChartLegend{Position: "bottom"},
		ShowBlanksAs: "gap",
	}
	if title != "" {
		c.Title = []excelize.RichTextRun{{Text: title}}
	}
	return c
}

func sortedKeys(m map[int]map[int]*cell) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
