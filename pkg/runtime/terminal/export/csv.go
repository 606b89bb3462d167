package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

// WriteCSV writes a header row and one record per table row. Floats keep full
// precision and NaN is written as an empty cell.
func WriteCSV(w io.Writer, table *domain.Table) error {
	rows, err := Cells(table, -1, "")
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
