package export

import (
	"math"
	"strconv"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

// Cells renders every value of t as text, row by row in column order. Dates use
// YYYY-MM-DD and NaN becomes missing.
func Cells(t *domain.Table, precision int, missing string) ([][]string, error) {
	columns := t.Columns()
	rows := make([][]string, t.Len())
	for i := range rows {
		rows[i] = make([]string, len(columns))
	}

	for j, name := range columns {
		kind, _ := t.Kind(name)
		switch kind {
		case domain.DateColumn:
			dates, err := t.Dates(name)
			if err != nil {
				return nil, err
			}
			for i, d := range dates {
				rows[i][j] = d.Format(time.DateOnly)
			}
		case domain.IntColumn:
			ints, err := t.Ints(name)
			if err != nil {
				return nil, err
			}
			for i, v := range ints {
				rows[i][j] = strconv.Itoa(v)
			}
		default:
			floats, err := t.Floats(name)
			if err != nil {
				return nil, err
			}
			for i, v := range floats {
				if math.IsNaN(v) {
					rows[i][j] = missing
					continue
				}
				rows[i][j] = strconv.FormatFloat(v, 'f', precision, 64)
			}
		}
	}
	return rows, nil
}
