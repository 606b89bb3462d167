package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Standard column names shared by fetchers, transforms and renderers.
const (
	ColumnPeriod    = "period"
	ColumnValue     = "value"
	ColumnYear      = "year"
	ColumnMonth     = "month"
	ColumnWeek      = "week"
	ColumnYearlyAvg = "yearly_avg"
	ColumnDeviation = "deviation"
)

type ColumnKind int

const (
	DateColumn ColumnKind = iota
	FloatColumn
	IntColumn
)

func (k ColumnKind) String() string {
	switch k {
	case DateColumn:
		return "date"
	case FloatColumn:
		return "float"
	case IntColumn:
		return "int"
	default:
		return "unknown"
	}
}

// MissingColumnError is returned when a table lacks columns an operation needs.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("columns [%s] are required", strings.Join(e.Columns, ", "))
}

// ColumnTypeError is returned when a column exists but holds another kind of data.
type ColumnTypeError struct {
	Column string
	Want   ColumnKind
	Got    ColumnKind
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("column %q is %s, expected %s", e.Column, e.Got, e.Want)
}

type column struct {
	name   string
	kind   ColumnKind
	dates  []time.Time
	floats []float64
	ints   []int
}

func (c *column) clone() *column {
	cp := &column{name: c.name, kind: c.kind}
	switch c.kind {
	case DateColumn:
		cp.dates = append([]time.Time(nil), c.dates...)
	case FloatColumn:
		cp.floats = append([]float64(nil), c.floats...)
	case IntColumn:
		cp.ints = append([]int(nil), c.ints...)
	}
	return cp
}

func (c *column) take(idx []int) *column {
	cp := &column{name: c.name, kind: c.kind}
	switch c.kind {
	case DateColumn:
		cp.dates = make([]time.Time, len(idx))
		for i, j := range idx {
			cp.dates[i] = c.dates[j]
		}
	case FloatColumn:
		cp.floats = make([]float64, len(idx))
		for i, j := range idx {
			cp.floats[i] = c.floats[j]
		}
	case IntColumn:
		cp.ints = make([]int, len(idx))
		for i, j := range idx {
			cp.ints[i] = c.ints[j]
		}
	}
	return cp
}

// Table is a column-oriented time series table. All columns share the row count
// fixed at construction. Slices returned by accessors are owned by the table and
// must not be modified.
type Table struct {
	rows    int
	columns []*column
	index   map[string]int
}

func NewTable(rows int) *Table {
	if rows < 0 {
		rows = 0
	}
	return &Table{
		rows:  rows,
		index: make(map[string]int),
	}
}

func (t *Table) Len() int {
	return t.rows
}

// Columns returns column names in insertion order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) Kind(name string) (ColumnKind, bool) {
	i, ok := t.index[name]
	if !ok {
		return 0, false
	}
	return t.columns[i].kind, true
}

// Require checks column presence only and never reads row data.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

func (t *Table) lookup(name string) (*column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Columns: []string{name}}
	}
	return t.columns[i], nil
}

func (t *Table) Dates(name string) ([]time.Time, error) {
	c, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	if c.kind != DateColumn {
		return nil, &ColumnTypeError{Column: name, Want: DateColumn, Got: c.kind}
	}
	return c.dates, nil
}

// Floats returns a float column. Integer columns are converted into a new slice.
func (t *Table) Floats(name string) ([]float64, error) {
	c, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	switch c.kind {
	case FloatColumn:
		return c.floats, nil
	case IntColumn:
		out := make([]float64, len(c.ints))
		for i, v := range c.ints {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, &ColumnTypeError{Column: name, Want: FloatColumn, Got: c.kind}
	}
}

func (t *Table) Ints(name string) ([]int, error) {
	c, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	if c.kind != IntColumn {
		return nil, &ColumnTypeError{Column: name, Want: IntColumn, Got: c.kind}
	}
	return c.ints, nil
}

func (t *Table) set(c *column, n int) error {
	if n != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.name, n, t.rows)
	}
	if i, ok := t.index[c.name]; ok {
		t.columns[i] = c
		return nil
	}
	t.index[c.name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// SetDates adds or replaces a date column. Values are normalised to UTC midnight.
func (t *Table) SetDates(name string, vals []time.Time) error {
	days := make([]time.Time, len(vals))
	for i, v := range vals {
		days[i] = Day(v)
	}
	return t.set(&column{name: name, kind: DateColumn, dates: days}, len(vals))
}

func (t *Table) SetFloats(name string, vals []float64) error {
	return t.set(&column{name: name, kind: FloatColumn, floats: vals}, len(vals))
}

func (t *Table) SetInts(name string, vals []int) error {
	return t.set(&column{name: name, kind: IntColumn, ints: vals}, len(vals))
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := NewTable(t.rows)
	for _, c := range t.columns {
		out.index[c.name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// Take returns a new table holding the rows at idx, in that order.
func (t *Table) Take(idx []int) *Table {
	out := NewTable(len(idx))
	for _, c := range t.columns {
		out.index[c.name] = len(out.columns)
		out.columns = append(out.columns, c.take(idx))
	}
	return out
}

// Drop returns a copy without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := NewTable(t.rows)
	for _, c := range t.columns {
		if skip[c.name] {
			continue
		}
		out.index[c.name] = len(out.columns)
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// Rename returns a copy with column from renamed to to.
func (t *Table) Rename(from, to string) (*Table, error) {
	if _, err := t.lookup(from); err != nil {
		return nil, err
	}
	if from != to && t.HasColumn(to) {
		return nil, fmt.Errorf("column %q already exists", to)
	}
	out := NewTable(t.rows)
	for _, c := range t.columns {
		cp := c.clone()
		if cp.name == from {
			cp.name = to
		}
		out.index[cp.name] = len(out.columns)
		out.columns = append(out.columns, cp)
	}
	return out, nil
}

// SortByDate returns a copy ordered by the date column ascending. Equal dates
// keep their relative order.
func (t *Table) SortByDate(name string) (*Table, error) {
	dates, err := t.Dates(name)
	if err != nil {
		return nil, err
	}
	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dates[idx[a]].Before(dates[idx[b]])
	})
	return t.Take(idx), nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
