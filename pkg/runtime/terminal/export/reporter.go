package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

type TableConfig struct {
	MinWidth  int
	Precision int
	Missing   string
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinWidth:  10,
		Precision: 2,
		Missing:   "-",
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type view struct {
	Columns []string
	Rows    [][]string
}

// Handle prints the table with one fixed-width column per table column.
func (c *Reporter) Handle(table *domain.Table) error {
	rows, err := Cells(table, c.config.Precision, c.config.Missing)
	if err != nil {
		return err
	}
	columns := table.Columns()

	widths := make([]int, len(columns))
	for i, name := range columns {
		widths[i] = max(c.config.MinWidth, len(name))
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	funcMap := template.FuncMap{
		"formatRow": func(cells []string) string {
			parts := make([]string, len(cells))
			for i, cell := range cells {
				parts[i] = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			return "|" + strings.Join(parts, "|") + "|"
		},
		"separator": func() string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
	}

	tmpl := `{{separator}}
{{formatRow .Columns}}
{{separator}}
{{range .Rows}}{{formatRow .}}
{{end}}{{separator}}
{{len .Rows}} rows
`

	t, err := template.New("table").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, view{Columns: columns, Rows: rows})
}
