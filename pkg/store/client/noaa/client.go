package noaa

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/energy-atlas/pkg/metrics"
	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/store/client/httpx"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://ftp.cpc.ncep.noaa.gov/htdocs/degree_days/weighted/daily_data"

	source = "noaa"

	ColumnHeatingDays = "heating_days"
	ColumnCoolingDays = "cooling_days"
)

var ErrMalformedTable = errors.New("malformed degree day table")

type Kind string

const (
	Heating Kind = "Heating"
	Cooling Kind = "Cooling"
)

type Config struct {
	BaseURL string
	HTTP    *httpx.Doer
	Metrics *metrics.Collector
}

// Client downloads the CPC population-weighted degree day files.
type Client struct {
	baseURL string
	http    *httpx.Doer
	metrics *metrics.Collector
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTP == nil {
		cfg.HTTP = httpx.NewDoer(httpx.Config{Source: source, Metrics: cfg.Metrics})
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTP,
		metrics: cfg.Metrics,
	}
}

// DegreeDays returns daily degree days for one year summed over states.
func (c *Client) DegreeDays(ctx context.Context, kind Kind, year int, states []string) (*domain.Table, error) {
	if kind != Heating && kind != Cooling {
		return nil, fmt.Errorf("unsupported degree day kind %q", kind)
	}
	body, err := c.download(ctx, fmt.Sprintf("%s/%d/StatesCONUS.%s.txt", c.baseURL, year, kind))
	if err != nil {
		return nil, err
	}
	days, sums, err := parseDegreeDays(body, kind, year, states)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordRecords(source, len(days), 0)

	zerolog.Ctx(ctx).Debug().
		Str("kind", string(kind)).
		Int("year", year).
		Int("days", len(days)).
		Msg("parsed degree day table")

	out := domain.NewTable(len(days))
	if err := out.SetDates(domain.ColumnPeriod, days); err != nil {
		return nil, err
	}
	if err := out.SetFloats(domain.ColumnValue, sums); err != nil {
		return nil, err
	}
	return out, nil
}

// DegreeDayRange fetches heating and cooling for every year in
// [startYear, endYear] and joins them on period. Days missing from either
// file are dropped.
func (c *Client) DegreeDayRange(ctx context.Context, startYear, endYear int, states []string) (*domain.Table, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("start year %d is after end year %d", startYear, endYear)
	}
	logger := zerolog.Ctx(ctx)

	var periods []time.Time
	var heating, cooling []float64
	for year := startYear; year <= endYear; year++ {
		logger.Info().Int("year", year).Msg("fetching degree days")

		h, err := c.DegreeDays(ctx, Heating, year, states)
		if err != nil {
			return nil, err
		}
		cd, err := c.DegreeDays(ctx, Cooling, year, states)
		if err != nil {
			return nil, err
		}

		coolingByDay, err := byDay(cd)
		if err != nil {
			return nil, err
		}
		hDates, err := h.Dates(domain.ColumnPeriod)
		if err != nil {
			return nil, err
		}
		hValues, err := h.Floats(domain.ColumnValue)
		if err != nil {
			return nil, err
		}
		for i, d := range hDates {
			cv, ok := coolingByDay[d]
			if !ok {
				continue
			}
			periods = append(periods, d)
			heating = append(heating, hValues[i])
			cooling = append(cooling, cv)
		}
	}
	if periods == nil {
		periods = []time.Time{}
		heating = []float64{}
		cooling = []float64{}
	}

	out := domain.NewTable(len(periods))
	if err := out.SetDates(domain.ColumnPeriod, periods); err != nil {
		return nil, err
	}
	if err := out.SetFloats(ColumnHeatingDays, heating); err != nil {
		return nil, err
	}
	if err := out.SetFloats(ColumnCoolingDays, cooling); err != nil {
		return nil, err
	}
	return out, nil
}

// Regions parses the climate division listing keyed by region id.
func (c *Client) Regions(ctx context.Context) (map[int]domain.ClimateRegion, error) {
	body, err := c.download(ctx, c.baseURL+"/regions/ClimateDivisions.txt")
	if err != nil {
		return nil, err
	}
	return parseRegions(body)
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	body, err := c.http.Get(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("noaa download %s failed: %w", url, err)
	}
	return body, nil
}

func byDay(t *domain.Table) (map[time.Time]float64, error) {
	dates, err := t.Dates(domain.ColumnPeriod)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(domain.ColumnValue)
	if err != nil {
		return nil, err
	}
	out := make(map[time.Time]float64, len(dates))
	for i, d := range dates {
		out[d] = values[i]
	}
	return out, nil
}
