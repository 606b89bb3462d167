package eia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/store/client/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEIA struct {
	mu      sync.Mutex
	rows    []map[string]interface{}
	total   interface{}
	queries []query
	paths   []string
	keys    []string
}

func (f *fakeEIA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var q query
	if err := json.Unmarshal([]byte(r.Header.Get("X-Params")), &q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.paths = append(f.paths, r.URL.Path)
	f.keys = append(f.keys, r.URL.Query().Get("api_key"))
	f.mu.Unlock()

	end := min(q.Offset+q.Length, len(f.rows))
	page := f.rows[min(q.Offset, len(f.rows)):end]
	total := f.total
	if total == nil {
		total = fmt.Sprint(len(f.rows))
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"response": map[string]interface{}{
			"total": total,
			"data":  page,
		},
	})
}

func newTestClient(t *testing.T, fake *fakeEIA, pageSize int) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:      "secret",
		Timezone:    domain.TimezoneCentral,
		BaseURL:     srv.URL,
		MaxPageSize: pageSize,
		Now: func() time.Time {
			return time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
		},
	})
}

func TestClient_Storage_PaginatesAndSorts(t *testing.T) {
	fake := &fakeEIA{rows: []map[string]interface{}{
		{"period": "2024-01-19", "value": "2700"},
		{"period": "2024-01-05", "value": 3000},
		{"period": "2024-01-12", "value": "2900.5"},
		{"period": "2024-01-26", "value": nil},
		{"period": "2024-02-02", "value": "NA"},
		{"period": "2024-02-09", "value": 2500},
		{"period": "2024-02-16", "value": 2400},
	}}
	client := newTestClient(t, fake, 3)

	tbl, err := client.Storage(context.Background(), domain.RegionEast)
	require.NoError(t, err)

	require.Len(t, fake.queries, 3)
	assert.Equal(t, []int{0, 3, 6}, []int{fake.queries[0].Offset, fake.queries[1].Offset, fake.queries[2].Offset})
	assert.Equal(t, []int{3, 3, 1}, []int{fake.queries[0].Length, fake.queries[1].Length, fake.queries[2].Length})
	assert.Equal(t, "/natural-gas/stor/wkly/data/", fake.paths[0])
	assert.Equal(t, "secret", fake.keys[0])

	q := fake.queries[0]
	assert.Equal(t, "weekly", q.Frequency)
	assert.Equal(t, []string{"NW2_EPG0_SWO_R31_BCF"}, q.Facets["series"])
	assert.Equal(t, "2019-01-01", q.Start)
	assert.Equal(t, "2024-02-29", q.End)

	dates, err := tbl.Dates(domain.ColumnPeriod)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC),
	}, dates)
	values, err := tbl.Floats(domain.ColumnValue)
	require.NoError(t, err)
	assert.Equal(t, []float64{3000, 2900.5, 2700, 2500, 2400}, values)
}

func TestClient_PowerGeneration_SumsRespondents(t *testing.T) {
	fake := &fakeEIA{
		total: 4,
		rows: []map[string]interface{}{
			{"period": "2024-01-01", "respondent": "MIDW", "value": "100"},
			{"period": "2024-01-01", "respondent": "TEN", "value": "50"},
			{"period": "2024-01-02", "respondent": "MIDW", "value": "120"},
			{"period": "2024-01-02", "respondent": "TEN", "value": "30"},
		},
	}
	client := newTestClient(t, fake, DefaultPageSize)

	tbl, err := client.PowerGeneration(context.Background(), domain.RegionMidwest, domain.FuelNaturalGas)
	require.NoError(t, err)

	require.Len(t, fake.queries, 1)
	q := fake.queries[0]
	assert.Equal(t, "daily", q.Frequency)
	assert.Equal(t, []string{"MIDW", "TEN"}, q.Facets["respondent"])
	assert.Equal(t, []string{"NG"}, q.Facets["fueltype"])
	assert.Equal(t, []string{"Central"}, q.Facets["timezone"])
	assert.Equal(t, "/electricity/rto/daily-fuel-type-data/data/", fake.paths[0])

	values, err := tbl.Floats(domain.ColumnValue)
	require.NoError(t, err)
	assert.Equal(t, []float64{150, 150}, values)
}

func TestClient_Consumption_MonthlyPeriods(t *testing.T) {
	fake := &fakeEIA{rows: []map[string]interface{}{
		{"period": "2023-02", "duoarea": "STX", "value": 10},
		{"period": "2023-01", "duoarea": "STX", "value": 20},
		{"period": "2023-01", "duoarea": "SSE", "value": 5},
	}}
	client := newTestClient(t, fake, DefaultPageSize)

	tbl, err := client.Consumption(context.Background(), domain.RegionSouth, domain.ConsumptionResidential)
	require.NoError(t, err)

	q := fake.queries[0]
	assert.Equal(t, "monthly", q.Frequency)
	assert.Equal(t, []string{"STX", "SSE"}, q.Facets["duoarea"])
	assert.Equal(t, []string{"VRS"}, q.Facets["process"])
	assert.Equal(t, "2005-01-01", q.Start)

	dates, err := tbl.Dates(domain.ColumnPeriod)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	}, dates)
	values, err := tbl.Floats(domain.ColumnValue)
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 10}, values)
}

func TestClient_Errors(t *testing.T) {
	fake := &fakeEIA{}
	client := newTestClient(t, fake, DefaultPageSize)

	_, err := client.Storage(context.Background(), "ATLANTIS")
	assert.True(t, errors.Is(err, domain.ErrUnknownRegion))

	_, err = client.PowerGeneration(context.Background(), domain.RegionSalt, domain.FuelWind)
	assert.True(t, errors.Is(err, domain.ErrUnknownRegion))
	assert.Empty(t, fake.queries)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	client = NewClient(Config{
		BaseURL: failing.URL,
		HTTP:    httpx.NewDoer(httpx.Config{Source: "eia"}),
	})
	_, err = client.Storage(context.Background(), domain.RegionEast)
	assert.True(t, errors.Is(err, httpx.ErrServerError), "got %v", err)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: `12.5`, want: 12.5, ok: true},
		{raw: `"42"`, want: 42, ok: true},
		{raw: `null`},
		{raw: ``},
		{raw: `"w"`},
	}
	for _, tt := range tests {
		got, ok := parseValue(json.RawMessage(tt.raw))
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
