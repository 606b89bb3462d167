package api

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "finite", in: 1.5, want: "1.5"},
		{name: "nan", in: math.NaN(), want: "null"},
		{name: "inf", in: math.Inf(1), want: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(NullableFloat(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}

	var f NullableFloat
	require.NoError(t, json.Unmarshal([]byte("null"), &f))
	assert.True(t, math.IsNaN(float64(f)))
}

func TestNewSeriesResponse(t *testing.T) {
	tbl := domain.NewTable(2)
	require.NoError(t, tbl.SetDates(domain.ColumnPeriod, []time.Time{
		time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, tbl.SetFloats(domain.ColumnValue, []float64{2.5, math.NaN()}))
	require.NoError(t, tbl.SetInts(domain.ColumnWeek, []int{1, 2}))

	resp, err := NewSeriesResponse("run-1", domain.RegionEast, tbl)
	require.NoError(t, err)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"run_id": "run-1",
		"region": "EAST",
		"columns": ["period", "value", "week"],
		"rows": [
			{"period": "2023-01-06", "value": 2.5, "week": 1},
			{"period": "2023-01-13", "value": null, "week": 2}
		]
	}`, string(out))
}

func TestNewRegion(t *testing.T) {
	info, err := domain.LookupRegion("salt")
	require.NoError(t, err)

	r := NewRegion(info)
	assert.Equal(t, "SALT", r.Name)
	assert.Empty(t, r.States)
	assert.Empty(t, r.Respondents)
	assert.NotNil(t, r.States)
}
