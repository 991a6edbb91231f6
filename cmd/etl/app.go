package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tindershed/wildfire-data-etl/internal/adapter/mongodb"
	"github.com/tindershed/wildfire-data-etl/internal/config"
	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/observability"
	"github.com/tindershed/wildfire-data-etl/internal/tzlookup"
)

// app bundles the pieces every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &app{
		cfg:     cfg,
		logger:  observability.NewLogger(cfg.LogLevel, cfg.LogFormat),
		metrics: observability.NewMetrics(),
	}, nil
}

func (a *app) connectStore(ctx context.Context) (*mongodb.Store, error) {
	return mongodb.Connect(ctx, a.cfg.MongoURI, a.logger)
}

func (a *app) timezoneResolver() (domain.TimezoneResolver, error) {
	tz, err := tzlookup.Default()
	if err != nil {
		return nil, fmt.Errorf("init timezone resolver: %w", err)
	}
	return tz, nil
}

// timeStage marks the pipeline active and reports the stage duration on
// completion.
func (a *app) timeStage(stage string) func() {
	start := domain.Now()
	a.metrics.PipelineRunning.Set(1)
	return func() {
		a.metrics.PipelineRunning.Set(0)
		a.metrics.StageDuration.WithLabelValues(stage).Observe(domain.Now().Sub(start).Seconds())
	}
}
