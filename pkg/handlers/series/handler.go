package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/energy-atlas/pkg/models/api"
	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/services/config"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
)

var errBadParam = errors.New("invalid query parameter")

type Pipeline interface {
	Weekly(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Seasonal(ctx context.Context, series pipeline.Series, req pipeline.Request) (*pipeline.Result, error)
}

type Handler struct {
	pipeline Pipeline
	defaults config.DefaultsConfig
}

func NewHandler(p Pipeline, defaults config.DefaultsConfig) *Handler {
	return &Handler{
		pipeline: p,
		defaults: defaults,
	}
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions := domain.Regions()
	response := make([]api.Region, len(regions))
	for i, info := range regions {
		response[i] = api.NewRegion(info)
	}
	writeJSON(w, r, http.StatusOK, response)
}

// GetWeekly serves every series of the region merged on the weekly calendar.
// Query: fuel, category, start_year.
func (h *Handler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	req, err := h.request(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.pipeline.Weekly(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSeries(w, r, req.Region, result)
}

// GetSeasonal serves the week-of-year deviation curve of one series.
// Query: series plus the GetWeekly parameters.
func (h *Handler) GetSeasonal(w http.ResponseWriter, r *http.Request) {
	req, err := h.request(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := r.URL.Query().Get("series")
	if name == "" {
		name = string(pipeline.SeriesStorage)
	}
	series, err := pipeline.ParseSeries(name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.pipeline.Seasonal(r.Context(), series, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSeries(w, r, req.Region, result)
}

func (h *Handler) request(r *http.Request) (pipeline.Request, error) {
	q := r.URL.Query()

	info, err := domain.LookupRegion(chi.URLParam(r, "region"))
	if err != nil {
		return pipeline.Request{}, err
	}
	fuel, err := domain.ParseFuelType(orDefault(q.Get("fuel"), h.defaults.Fuel))
	if err != nil {
		return pipeline.Request{}, err
	}
	category, err := domain.ParseConsumptionCategory(orDefault(q.Get("category"), h.defaults.Category))
	if err != nil {
		return pipeline.Request{}, err
	}

	startYear := h.defaults.StartYear
	if s := q.Get("start_year"); s != "" {
		startYear, err = strconv.Atoi(s)
		if err != nil || startYear <= 0 {
			return pipeline.Request{}, fmt.Errorf("%w: start_year %q", errBadParam, s)
		}
	}

	return pipeline.Request{
		Region:    info.Region,
		Fuel:      fuel,
		Category:  category,
		StartYear: startYear,
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func writeSeries(w http.ResponseWriter, r *http.Request, region domain.StorageRegion, result *pipeline.Result) {
	response, err := api.NewSeriesResponse(result.RunID, region, result.Table)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, response)
}

// statusFor maps request and pipeline errors onto HTTP status codes. Anything
// unrecognised is treated as an upstream failure.
func statusFor(err error) int {
	var missing *domain.MissingColumnError
	switch {
	case errors.Is(err, domain.ErrUnknownRegion),
		errors.Is(err, domain.ErrUnknownFuel),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, pipeline.ErrUnknownSeries),
		errors.Is(err, errBadParam):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	response := api.ErrorResponse{Error: err.Error()}
	var missing *domain.MissingColumnError
	if errors.As(err, &missing) {
		response.Missing = missing.Columns
	}

	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Int("status", status).
		Msg("request failed")
	writeJSON(w, r, status, response)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
