package eia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/de-tools/energy-atlas/pkg/metrics"
	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/store/client/httpx"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL  = "https://api.eia.gov/v2"
	DefaultPageSize = 5000

	source = "eia"

	powerGenerationPath = "/electricity/rto/daily-fuel-type-data/data/"
	storagePath         = "/natural-gas/stor/wkly/data/"
	consumptionPath     = "/natural-gas/cons/sum/data/"
)

var (
	powerGenerationStart = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	storageStart         = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	consumptionStart     = time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
)

type Config struct {
	APIKey      string
	Timezone    domain.Timezone
	BaseURL     string
	MaxPageSize int
	HTTP        *httpx.Doer
	Metrics     *metrics.Collector
	// Now overrides the clock used for the end of the query window.
	Now func() time.Time
}

// Client pulls series from the EIA v2 API. Each query is paged until the
// reported total has been collected.
type Client struct {
	apiKey   string
	timezone domain.Timezone
	location *time.Location
	baseURL  string
	pageSize int
	http     *httpx.Doer
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultPageSize
	}
	if cfg.Timezone == "" {
		cfg.Timezone = domain.TimezoneEastern
	}
	if cfg.HTTP == nil {
		cfg.HTTP = httpx.NewDoer(httpx.Config{Source: source, Metrics: cfg.Metrics})
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	loc, err := time.LoadLocation(cfg.Timezone.Location())
	if err != nil {
		loc = time.UTC
	}
	return &Client{
		apiKey:   cfg.APIKey,
		timezone: cfg.Timezone,
		location: loc,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: cfg.MaxPageSize,
		http:     cfg.HTTP,
		metrics:  cfg.Metrics,
		now:      cfg.Now,
	}
}

// Storage returns weekly working gas in storage for the region, in BCF.
func (c *Client) Storage(ctx context.Context, region domain.StorageRegion) (*domain.Table, error) {
	info, err := domain.LookupRegion(string(region))
	if err != nil {
		return nil, err
	}
	q := query{
		Frequency: "weekly",
		Data:      []string{"value"},
		Facets:    map[string][]string{"series": {info.SeriesID}},
		Start:     storageStart.Format(time.DateOnly),
	}
	return c.series(ctx, storagePath, q)
}

// PowerGeneration returns daily generation for one fuel summed across the
// region's respondents, in MWh.
func (c *Client) PowerGeneration(ctx context.Context, region domain.StorageRegion, fuel domain.FuelType) (*domain.Table, error) {
	info, err := domain.LookupRegion(string(region))
	if err != nil {
		return nil, err
	}
	if len(info.Respondents) == 0 {
		return nil, fmt.Errorf("%w: %s has no power generation respondents", domain.ErrUnknownRegion, region)
	}
	respondents := make([]string, len(info.Respondents))
	for i, r := range info.Respondents {
		respondents[i] = string(r)
	}
	q := query{
		Frequency: "daily",
		Data:      []string{"value"},
		Facets: map[string][]string{
			"respondent": respondents,
			"fueltype":   {string(fuel)},
			"timezone":   {string(c.timezone)},
		},
		Start: powerGenerationStart.Format(time.DateOnly),
	}
	return c.series(ctx, powerGenerationPath, q)
}

// Consumption returns monthly natural gas consumption for the region's state
// areas summed per month, in MMcf.
func (c *Client) Consumption(ctx context.Context, region domain.StorageRegion, category domain.ConsumptionCategory) (*domain.Table, error) {
	info, err := domain.LookupRegion(string(region))
	if err != nil {
		return nil, err
	}
	if len(info.Respondents) == 0 {
		return nil, fmt.Errorf("%w: %s has no consumption areas", domain.ErrUnknownRegion, region)
	}
	q := query{
		Frequency: "monthly",
		Data:      []string{"value"},
		Facets: map[string][]string{
			"duoarea": info.DuoAreas(),
			"process": {string(category)},
		},
		Start: consumptionStart.Format(time.DateOnly),
	}
	return c.series(ctx, consumptionPath, q)
}

// series pages through path and sums values sharing a period.
func (c *Client) series(ctx context.Context, path string, q query) (*domain.Table, error) {
	logger := zerolog.Ctx(ctx)

	q.End = c.now().In(c.location).Format(time.DateOnly)
	q.Sort = []sortSpec{{Column: "period", Direction: "asc"}}

	records, err := c.fetchAll(ctx, path, q)
	if err != nil {
		return nil, err
	}

	sums := make(map[time.Time]float64)
	skipped := 0
	for _, r := range records {
		period, err := parsePeriod(r.Period)
		if err != nil {
			skipped++
			logger.Debug().Str("period", r.Period).Msg("skipping record with unparsable period")
			continue
		}
		value, ok := parseValue(r.Value)
		if !ok {
			skipped++
			logger.Debug().
				Str("period", r.Period).
				Str("value", string(r.Value)).
				Msg("skipping record without numeric value")
			continue
		}
		sums[period] += value
	}
	c.metrics.RecordRecords(source, len(records)-skipped, skipped)

	periods := make([]time.Time, 0, len(sums))
	for p := range sums {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	values := make([]float64, len(periods))
	for i, p := range periods {
		values[i] = sums[p]
	}

	out := domain.NewTable(len(periods))
	if err := out.SetDates(domain.ColumnPeriod, periods); err != nil {
		return nil, err
	}
	if err := out.SetFloats(domain.ColumnValue, values); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchAll(ctx context.Context, path string, q query) ([]record, error) {
	logger := zerolog.Ctx(ctx)

	q.Offset = 0
	q.Length = c.pageSize
	first, err := c.fetchPage(ctx, path, q)
	if err != nil {
		return nil, err
	}
	size, err := first.Response.Total.Int()
	if err != nil {
		return nil, fmt.Errorf("failed to parse eia total %q: %w", first.Response.Total, err)
	}
	records := first.Response.Data
	logger.Info().
		Str("path", path).
		Int("total", size).
		Msg("querying eia rows")

	for len(records) < size {
		q.Offset = len(records)
		q.Length = min(c.pageSize, size-len(records))
		page, err := c.fetchPage(ctx, path, q)
		if err != nil {
			return nil, err
		}
		if len(page.Response.Data) == 0 {
			logger.Warn().
				Int("received", len(records)).
				Int("total", size).
				Msg("eia returned an empty page before the reported total")
			break
		}
		records = append(records, page.Response.Data...)
		logger.Debug().
			Int("received", len(records)).
			Int("total", size).
			Msg("received eia page")
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, path string, q query) (*response, error) {
	params, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode eia query: %w", err)
	}

	body, err := c.http.Get(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Params", string(params))
		values := url.Values{}
		values.Set("api_key", c.apiKey)
		req.URL.RawQuery = values.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("eia request %s offset %d failed: %w", path, q.Offset, err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode eia response: %w", err)
	}
	return &resp, nil
}

var periodLayouts = []string{time.DateOnly, "2006-01", "2006-01-02T15", "2006"}

func parsePeriod(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range periodLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return domain.Day(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseValue accepts JSON numbers and numeric strings. null and anything else
// report false.
func parseValue(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
