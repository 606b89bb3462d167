package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/energy-atlas/pkg/metrics"
	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/services/transform"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Weekly series column names.
const (
	ColumnStorage     = "storage_bcf"
	ColumnPower       = "power_mwh"
	ColumnConsumption = "consumption_mmcf"
	ColumnHeating     = "heating_days"
	ColumnCooling     = "cooling_days"
)

// DefaultStartYear matches the first year of the EIA daily and weekly series.
const DefaultStartYear = 2019

var ErrUnknownSeries = errors.New("unknown series")

type Series string

const (
	SeriesStorage     Series = "storage"
	SeriesPower       Series = "power"
	SeriesConsumption Series = "consumption"
	SeriesHeating     Series = "heating"
	SeriesCooling     Series = "cooling"
)

func ParseSeries(s string) (Series, error) {
	switch Series(strings.ToLower(strings.TrimSpace(s))) {
	case SeriesStorage:
		return SeriesStorage, nil
	case SeriesPower:
		return SeriesPower, nil
	case SeriesConsumption:
		return SeriesConsumption, nil
	case SeriesHeating:
		return SeriesHeating, nil
	case SeriesCooling:
		return SeriesCooling, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSeries, s)
}

// EIAFetcher is the subset of the EIA client the pipeline needs.
type EIAFetcher interface {
	Storage(ctx context.Context, region domain.StorageRegion) (*domain.Table, error)
	PowerGeneration(ctx context.Context, region domain.StorageRegion, fuel domain.FuelType) (*domain.Table, error)
	Consumption(ctx context.Context, region domain.StorageRegion, category domain.ConsumptionCategory) (*domain.Table, error)
}

type DegreeDayFetcher interface {
	DegreeDayRange(ctx context.Context, startYear, endYear int, states []string) (*domain.Table, error)
}

// Request selects the region and series options of a run. A zero StartYear
// means DefaultStartYear and a zero EndYear the current year.
type Request struct {
	Region    domain.StorageRegion
	Fuel      domain.FuelType
	Category  domain.ConsumptionCategory
	StartYear int
	EndYear   int
}

type Result struct {
	RunID string
	Table *domain.Table
}

type Options struct {
	EIA     EIAFetcher
	NOAA    DegreeDayFetcher
	Metrics *metrics.Collector
	Now     func() time.Time
}

// Service fetches raw series and reconciles them onto the weekly calendar.
// Fetches run sequentially.
type Service struct {
	eia     EIAFetcher
	noaa    DegreeDayFetcher
	metrics *metrics.Collector
	now     func() time.Time
}

func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		eia:     opts.EIA,
		noaa:    opts.NOAA,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
}

// StorageWeekly aligns weekly storage reports to the Friday calendar.
func (s *Service) StorageWeekly(ctx context.Context, region domain.StorageRegion) (*domain.Table, error) {
	raw, err := s.eia.Storage(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch storage: %w", err)
	}
	weekly, err := transform.DownscaleDailyToWeekly(raw, domain.ColumnPeriod, domain.ColumnValue)
	if err != nil {
		return nil, err
	}
	return weekly.Rename(domain.ColumnValue, ColumnStorage)
}

// PowerWeekly averages daily generation into weeks.
func (s *Service) PowerWeekly(ctx context.Context, region domain.StorageRegion, fuel domain.FuelType) (*domain.Table, error) {
	raw, err := s.eia.PowerGeneration(ctx, region, fuel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch power generation: %w", err)
	}
	weekly, err := transform.DownscaleDailyToWeekly(raw, domain.ColumnPeriod, domain.ColumnValue)
	if err != nil {
		return nil, err
	}
	return weekly.Rename(domain.ColumnValue, ColumnPower)
}

// ConsumptionWeekly spreads monthly consumption over weeks through the
// mid-month reference weeks.
func (s *Service) ConsumptionWeekly(ctx context.Context, region domain.StorageRegion, category domain.ConsumptionCategory) (*domain.Table, error) {
	raw, err := s.eia.Consumption(ctx, region, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch consumption: %w", err)
	}
	weekly, err := transform.MonthlyToWeekly(raw, domain.ColumnPeriod, domain.ColumnValue)
	if err != nil {
		return nil, err
	}
	weekly = weekly.Drop(domain.ColumnYear, domain.ColumnMonth, domain.ColumnWeek)
	return weekly.Rename(domain.ColumnValue, ColumnConsumption)
}

// DegreeDaysWeekly averages daily heating and cooling degree days into weeks.
func (s *Service) DegreeDaysWeekly(ctx context.Context, region domain.StorageRegion, startYear, endYear int) (*domain.Table, error) {
	info, err := domain.LookupRegion(string(region))
	if err != nil {
		return nil, err
	}
	if len(info.States) == 0 {
		return nil, fmt.Errorf("%w: %s has no weather states", domain.ErrUnknownRegion, region)
	}
	raw, err := s.noaa.DegreeDayRange(ctx, startYear, endYear, info.States)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch degree days: %w", err)
	}

	heating, err := downscaleColumn(raw, ColumnHeating)
	if err != nil {
		return nil, err
	}
	cooling, err := downscaleColumn(raw, ColumnCooling)
	if err != nil {
		return nil, err
	}
	return transform.MergeOnDate(domain.ColumnPeriod, heating, cooling)
}

// Weekly merges every series available for the region on the weekly calendar
// and keeps rows from StartYear on.
func (s *Service) Weekly(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.New().String()
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", runID).
		Str("operation", "weekly").
		Str("region", string(req.Region)).
		Logger()
	ctx = logger.WithContext(ctx)
	timer := metrics.NewTimer()

	table, err := s.weekly(ctx, s.normalize(req))
	if err != nil {
		s.metrics.RecordPipelineRun("weekly", metrics.StatusError, timer.Elapsed(), 0)
		logger.Error().Err(err).Msg("weekly pipeline failed")
		return nil, err
	}

	s.metrics.RecordPipelineRun("weekly", metrics.StatusSuccess, timer.Elapsed(), table.Len())
	logger.Info().
		Int("rows", table.Len()).
		Strs("columns", table.Columns()).
		Msg("weekly pipeline finished")
	return &Result{RunID: runID, Table: table}, nil
}

func (s *Service) weekly(ctx context.Context, req Request) (*domain.Table, error) {
	logger := zerolog.Ctx(ctx)
	info, err := domain.LookupRegion(string(req.Region))
	if err != nil {
		return nil, err
	}

	storage, err := s.StorageWeekly(ctx, info.Region)
	if err != nil {
		return nil, err
	}
	tables := []*domain.Table{storage}

	if len(info.Respondents) > 0 {
		power, err := s.PowerWeekly(ctx, info.Region, req.Fuel)
		if err != nil {
			return nil, err
		}
		consumption, err := s.ConsumptionWeekly(ctx, info.Region, req.Category)
		if err != nil {
			return nil, err
		}
		tables = append(tables, power, consumption)
	} else {
		logger.Info().Msg("region has no respondents, skipping power and consumption")
	}

	if len(info.States) > 0 {
		degreeDays, err := s.DegreeDaysWeekly(ctx, info.Region, req.StartYear, req.EndYear)
		if err != nil {
			return nil, err
		}
		tables = append(tables, degreeDays)
	} else {
		logger.Info().Msg("region has no weather states, skipping degree days")
	}

	merged, err := transform.MergeOnDate(domain.ColumnPeriod, tables...)
	if err != nil {
		return nil, err
	}
	return sinceYear(merged, req.StartYear)
}

// Seasonal computes the week-of-year deviation curve for one series.
func (s *Service) Seasonal(ctx context.Context, series Series, req Request) (*Result, error) {
	runID := uuid.New().String()
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", runID).
		Str("operation", "seasonal").
		Str("region", string(req.Region)).
		Str("series", string(series)).
		Logger()
	ctx = logger.WithContext(ctx)
	timer := metrics.NewTimer()

	table, err := s.seasonal(ctx, series, s.normalize(req))
	if err != nil {
		s.metrics.RecordPipelineRun("seasonal", metrics.StatusError, timer.Elapsed(), 0)
		logger.Error().Err(err).Msg("seasonal pipeline failed")
		return nil, err
	}

	s.metrics.RecordPipelineRun("seasonal", metrics.StatusSuccess, timer.Elapsed(), table.Len())
	logger.Info().Int("rows", table.Len()).Msg("seasonal pipeline finished")
	return &Result{RunID: runID, Table: table}, nil
}

func (s *Service) seasonal(ctx context.Context, series Series, req Request) (*domain.Table, error) {
	weekly, column, err := s.seriesWeekly(ctx, series, req)
	if err != nil {
		return nil, err
	}
	weekly, err = sinceYear(weekly, req.StartYear)
	if err != nil {
		return nil, err
	}
	return transform.SeasonalDeviationByWeek(weekly, domain.ColumnPeriod, column)
}

// SeriesWeekly returns one weekly series and the name of its value column.
func (s *Service) SeriesWeekly(ctx context.Context, series Series, req Request) (*domain.Table, string, error) {
	req = s.normalize(req)
	weekly, column, err := s.seriesWeekly(ctx, series, req)
	if err != nil {
		return nil, "", err
	}
	weekly, err = sinceYear(weekly, req.StartYear)
	if err != nil {
		return nil, "", err
	}
	return weekly, column, nil
}

func (s *Service) seriesWeekly(ctx context.Context, series Series, req Request) (*domain.Table, string, error) {
	switch series {
	case SeriesStorage:
		t, err := s.StorageWeekly(ctx, req.Region)
		return t, ColumnStorage, err
	case SeriesPower:
		t, err := s.PowerWeekly(ctx, req.Region, req.Fuel)
		return t, ColumnPower, err
	case SeriesConsumption:
		t, err := s.ConsumptionWeekly(ctx, req.Region, req.Category)
		return t, ColumnConsumption, err
	case SeriesHeating, SeriesCooling:
		t, err := s.DegreeDaysWeekly(ctx, req.Region, req.StartYear, req.EndYear)
		if err != nil {
			return nil, "", err
		}
		keep, drop := ColumnHeating, ColumnCooling
		if series == SeriesCooling {
			keep, drop = ColumnCooling, ColumnHeating
		}
		return t.Drop(drop), keep, nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownSeries, series)
}

func (s *Service) normalize(req Request) Request {
	if req.StartYear <= 0 {
		req.StartYear = DefaultStartYear
	}
	if req.EndYear <= 0 {
		req.EndYear = s.now().Year()
	}
	return req
}

func downscaleColumn(t *domain.Table, column string) (*domain.Table, error) {
	return transform.DownscaleDailyToWeekly(t, domain.ColumnPeriod, column)
}

// sinceYear drops rows dated before January 1 of year.
func sinceYear(t *domain.Table, year int) (*domain.Table, error) {
	dates, err := t.Dates(domain.ColumnPeriod)
	if err != nil {
		return nil, err
	}
	idx := make([]int, 0, len(dates))
	for i, d := range dates {
		if d.Year() >= year {
			idx = append(idx, i)
		}
	}
	return t.Take(idx), nil
}
