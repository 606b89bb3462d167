package api

import (
	"encoding/json"
	"math"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

// NullableFloat encodes NaN and ±Inf as JSON null.
type NullableFloat float64

func (f NullableFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *NullableFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}

type Region struct {
	Name        string   `json:"name"`
	SeriesID    string   `json:"series_id"`
	States      []string `json:"states"`
	Respondents []string `json:"respondents"`
}

type SeriesResponse struct {
	RunID   string           `json:"run_id"`
	Region  string           `json:"region"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func NewRegion(info domain.RegionInfo) Region {
	r := Region{
		Name:        string(info.Region),
		SeriesID:    info.SeriesID,
		States:      append([]string{}, info.States...),
		Respondents: make([]string, len(info.Respondents)),
	}
	for i, resp := range info.Respondents {
		r.Respondents[i] = string(resp)
	}
	return r
}

// NewSeriesResponse flattens a table into one JSON object per row. Dates are
// rendered as YYYY-MM-DD.
func NewSeriesResponse(runID string, region domain.StorageRegion, t *domain.Table) (*SeriesResponse, error) {
	columns := t.Columns()
	rows := make([]map[string]any, t.Len())
	for i := range rows {
		rows[i] = make(map[string]any, len(columns))
	}

	for _, name := range columns {
		kind, _ := t.Kind(name)
		switch kind {
		case domain.DateColumn:
			dates, err := t.Dates(name)
			if err != nil {
				return nil, err
			}
			for i, d := range dates {
				rows[i][name] = d.Format(time.DateOnly)
			}
		case domain.IntColumn:
			ints, err := t.Ints(name)
			if err != nil {
				return nil, err
			}
			for i, v := range ints {
				rows[i][name] = v
			}
		default:
			floats, err := t.Floats(name)
			if err != nil {
				return nil, err
			}
			for i, v := range floats {
				rows[i][name] = NullableFloat(v)
			}
		}
	}

	return &SeriesResponse{
		RunID:   runID,
		Region:  string(region),
		Columns: columns,
		Rows:    rows,
	}, nil
}
