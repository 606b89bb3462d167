// Package bootstrap assembles clients and services from a loaded config.
package bootstrap

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/de-tools/energy-atlas/pkg/metrics"
	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/services/config"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
	"github.com/de-tools/energy-atlas/pkg/store/client/eia"
	"github.com/de-tools/energy-atlas/pkg/store/client/httpx"
	"github.com/de-tools/energy-atlas/pkg/store/client/noaa"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

type App struct {
	Config   *config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
	EIA      *eia.Client
	NOAA     *noaa.Client
	Pipeline *pipeline.Service
}

// NewLogger builds the root logger. Pretty output goes through a console
// writer, otherwise lines are JSON.
func NewLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func New(cfg *config.Config) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	backoff := httpx.BackoffConfig{
		MaxRetries:      cfg.HTTP.MaxRetries,
		InitialInterval: cfg.HTTP.InitialInterval,
		MaxInterval:     cfg.HTTP.MaxInterval,
	}
	doer := func(source string) *httpx.Doer {
		return httpx.NewDoer(httpx.Config{
			Source:  source,
			Client:  &http.Client{Timeout: cfg.HTTP.Timeout},
			Backoff: backoff,
			Metrics: collector,
		})
	}

	eiaClient := eia.NewClient(eia.Config{
		APIKey:      cfg.EIA.APIKey,
		Timezone:    domain.Timezone(cfg.EIA.Timezone),
		BaseURL:     cfg.EIA.BaseURL,
		MaxPageSize: cfg.EIA.PageSize,
		HTTP:        doer("eia"),
		Metrics:     collector,
	})
	noaaClient := noaa.NewClient(noaa.Config{
		BaseURL: cfg.NOAA.BaseURL,
		HTTP:    doer("noaa"),
		Metrics: collector,
	})

	return &App{
		Config:   cfg,
		Registry: registry,
		Metrics:  collector,
		EIA:      eiaClient,
		NOAA:     noaaClient,
		Pipeline: pipeline.NewService(pipeline.Options{
			EIA:     eiaClient,
			NOAA:    noaaClient,
			Metrics: collector,
		}),
	}
}

// Request turns the configured defaults into a pipeline request. Invalid
// default names surface as errors here rather than at load time.
func Request(d config.DefaultsConfig) (pipeline.Request, error) {
	info, err := domain.LookupRegion(d.Region)
	if err != nil {
		return pipeline.Request{}, err
	}
	fuel, err := domain.ParseFuelType(d.Fuel)
	if err != nil {
		return pipeline.Request{}, err
	}
	category, err := domain.ParseConsumptionCategory(d.Category)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Region:    info.Region,
		Fuel:      fuel,
		Category:  category,
		StartYear: d.StartYear,
	}, nil
}
