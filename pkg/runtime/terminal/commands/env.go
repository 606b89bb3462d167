package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/runtime/chart"
	"github.com/de-tools/energy-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/energy-atlas/pkg/services/config"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
	"github.com/de-tools/energy-atlas/pkg/services/transform"
	"github.com/spf13/cobra"
)

var errNotReady = errors.New("command environment is not initialised")

// Pipeline is the part of pipeline.Service the commands drive.
type Pipeline interface {
	StorageWeekly(ctx context.Context, region domain.StorageRegion) (*domain.Table, error)
	PowerWeekly(ctx context.Context, region domain.StorageRegion, fuel domain.FuelType) (*domain.Table, error)
	ConsumptionWeekly(ctx context.Context, region domain.StorageRegion, category domain.ConsumptionCategory) (*domain.Table, error)
	DegreeDaysWeekly(ctx context.Context, region domain.StorageRegion, startYear, endYear int) (*domain.Table, error)
	Weekly(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Seasonal(ctx context.Context, series pipeline.Series, req pipeline.Request) (*pipeline.Result, error)
}

type DivisionLister interface {
	Regions(ctx context.Context) (map[int]domain.ClimateRegion, error)
}

// Env is filled by the root command once config is loaded, before any
// subcommand runs.
type Env struct {
	Pipeline  Pipeline
	Divisions DivisionLister
	Defaults  config.DefaultsConfig
}

func (e *Env) ready() error {
	if e == nil || e.Pipeline == nil {
		return errNotReady
	}
	return nil
}

func (e *Env) region(flag string) (domain.StorageRegion, error) {
	if flag == "" {
		flag = e.Defaults.Region
	}
	info, err := domain.LookupRegion(flag)
	if err != nil {
		return "", err
	}
	return info.Region, nil
}

func (e *Env) fuel(flag string) (domain.FuelType, error) {
	if flag == "" {
		flag = e.Defaults.Fuel
	}
	return domain.ParseFuelType(flag)
}

func (e *Env) category(flag string) (domain.ConsumptionCategory, error) {
	if flag == "" {
		flag = e.Defaults.Category
	}
	return domain.ParseConsumptionCategory(flag)
}

func (e *Env) startYear(flag int) int {
	if flag > 0 {
		return flag
	}
	return e.Defaults.StartYear
}

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatXLSX  = "xlsx"
)

type output struct {
	format  string
	path    string
	overlay bool
	create  func(path string) (io.WriteCloser, error)
}

func (o *output) register(cmd *cobra.Command, overlay bool) {
	cmd.Flags().StringVarP(&o.format, "output", "o", formatTable, "Output format: table, csv or xlsx")
	cmd.Flags().StringVar(&o.path, "out", "", "Write output to this file instead of stdout")
	if overlay {
		cmd.Flags().BoolVar(&o.overlay, "overlay", false, "With xlsx, plot one line per year against week of year")
	}
}

func (o *output) render(cmd *cobra.Command, table *domain.Table, opts chart.Options) (err error) {
	format := strings.ToLower(o.format)
	switch format {
	case formatTable, formatCSV:
	case formatXLSX:
		if o.path == "" {
			return fmt.Errorf("%s output needs --out", formatXLSX)
		}
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}

	if o.path == "" {
		return o.write(cmd.OutOrStdout(), format, table, opts)
	}

	create := o.create
	if create == nil {
		create = func(path string) (io.WriteCloser, error) { return os.Create(path) }
	}
	f, err := create(o.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", o.path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", o.path, cerr)
		}
	}()
	return o.write(f, format, table, opts)
}

func (o *output) write(w io.Writer, format string, table *domain.Table, opts chart.Options) error {
	switch format {
	case formatCSV:
		return export.WriteCSV(w, table)
	case formatXLSX:
		if o.overlay && len(opts.Columns) == 1 {
			withCalendar, err := transform.WithCalendarColumns(table, domain.ColumnPeriod)
			if err != nil {
				return err
			}
			return chart.WriteYearOverlay(w, withCalendar, opts.Columns[0])
		}
		return chart.WriteLineChart(w, table, opts)
	default:
		return export.NewReporter(w).Handle(table)
	}
}
