package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/energy-atlas/pkg/models/api"
	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/services/config"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
	"github.com/de-tools/energy-atlas/pkg/store/client/httpx"
)

type mockPipeline struct {
	mock.Mock
}

func (m *mockPipeline) Weekly(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func (m *mockPipeline) Seasonal(
	ctx context.Context,
	series pipeline.Series,
	req pipeline.Request,
) (*pipeline.Result, error) {
	args := m.Called(ctx, series, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

var defaults = config.DefaultsConfig{
	Region:    "EAST",
	Fuel:      "NG",
	Category:  "RESIDENTIAL",
	StartYear: 2019,
}

func withRegion(req *http.Request, region string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("region", region)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func weekly(t *testing.T) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(2)
	require.NoError(t, tbl.SetDates(domain.ColumnPeriod, []time.Time{
		time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, tbl.SetFloats(pipeline.ColumnStorage, []float64{100, math.NaN()}))
	return tbl
}

func TestListRegions(t *testing.T) {
	h := NewHandler(new(mockPipeline), defaults)

	rec := httptest.NewRecorder()
	h.ListRegions(rec, httptest.NewRequest("GET", "/regions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response []api.Region
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Len(t, response, len(domain.Regions()))
	assert.Equal(t, "EAST", response[0].Name)
}

func TestGetWeekly(t *testing.T) {
	tests := []struct {
		name           string
		region         string
		query          string
		setupMock      func(*mockPipeline)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "successful response",
			region: "south",
			query:  "?fuel=COL&start_year=2021",
			setupMock: func(m *mockPipeline) {
				m.On("Weekly", mock.Anything, pipeline.Request{
					Region:    domain.RegionSouth,
					Fuel:      domain.FuelCoal,
					Category:  domain.ConsumptionResidential,
					StartYear: 2021,
				}).Return(&pipeline.Result{RunID: "run-1", Table: weekly(t)}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{
				"run_id": "run-1",
				"region": "SOUTH",
				"columns": ["period", "storage_bcf"],
				"rows": [
					{"period": "2023-01-06", "storage_bcf": 100},
					{"period": "2023-01-13", "storage_bcf": null}
				]
			}`,
		},
		{
			name:           "unknown region",
			region:         "ATLANTIS",
			setupMock:      func(*mockPipeline) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown fuel",
			region:         "EAST",
			query:          "?fuel=diesel",
			setupMock:      func(*mockPipeline) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad start year",
			region:         "EAST",
			query:          "?start_year=soon",
			setupMock:      func(*mockPipeline) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "missing column",
			region: "EAST",
			setupMock: func(m *mockPipeline) {
				m.On("Weekly", mock.Anything, mock.Anything).
					Return(nil, &domain.MissingColumnError{Columns: []string{"value"}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"error": "columns [value] are required", "missing": ["value"]}`,
		},
		{
			name:   "upstream failure",
			region: "EAST",
			setupMock: func(m *mockPipeline) {
				m.On("Weekly", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("failed to fetch storage: %w", httpx.ErrServerError))
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(mockPipeline)
			tt.setupMock(p)
			h := NewHandler(p, defaults)

			req := withRegion(httptest.NewRequest("GET", "/regions/"+tt.region+"/weekly"+tt.query, nil), tt.region)
			rec := httptest.NewRecorder()

			h.GetWeekly(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
			p.AssertExpectations(t)
		})
	}
}

func TestGetSeasonal(t *testing.T) {
	curve := domain.NewTable(1)
	require.NoError(t, curve.SetInts(domain.ColumnWeek, []int{1}))
	require.NoError(t, curve.SetFloats(domain.ColumnDeviation, []float64{math.Inf(1)}))

	p := new(mockPipeline)
	p.On("Seasonal", mock.Anything, pipeline.SeriesCooling, mock.AnythingOfType("pipeline.Request")).
		Return(&pipeline.Result{RunID: "run-2", Table: curve}, nil)
	h := NewHandler(p, defaults)

	req := withRegion(httptest.NewRequest("GET", "/regions/PACIFIC/seasonal?series=cooling", nil), "PACIFIC")
	rec := httptest.NewRecorder()
	h.GetSeasonal(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"run_id": "run-2",
		"region": "PACIFIC",
		"columns": ["week", "deviation"],
		"rows": [{"week": 1, "deviation": null}]
	}`, rec.Body.String())

	req = withRegion(httptest.NewRequest("GET", "/regions/PACIFIC/seasonal?series=wind", nil), "PACIFIC")
	rec = httptest.NewRecorder()
	h.GetSeasonal(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("x: %w", domain.ErrUnknownCategory)))
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
}
