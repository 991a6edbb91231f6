package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tindershed/wildfire-data-etl/internal/adapter/darksky"
	"github.com/tindershed/wildfire-data-etl/internal/adapter/mongodb"
	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/pipeline"
)

func newClimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "climate",
		Short: "Fetch and align historical climate windows for training events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			store, err := a.connectStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(context.Background()) //nolint:errcheck

			return runClimate(cmd.Context(), a, store)
		},
	}
}

func runClimate(ctx context.Context, a *app, store *mongodb.Store) error {
	defer a.timeStage("climate")()

	if a.cfg.DarkSkyAPIKey == "" {
		return fmt.Errorf("DARKSKY_API_KEY is required for climate collection")
	}

	events, err := store.ReadEvents(ctx, mongodb.CollTraining)
	if err != nil {
		return err
	}
	a.logger.Info("collecting climate windows", "events", len(events))

	tm := darksky.NewClient(a.cfg.DarkSkyAPIKey, a.cfg.DarkSkyBaseURL, a.cfg.DarkSkyTimeout, a.logger)
	collector := pipeline.NewClimateCollector(tm, pipeline.ClimateConfig{
		Interval: domain.Interval(a.cfg.ClimateInterval),
		Units:    a.cfg.ClimateUnits,
		Limit:    a.cfg.ClimateLimit,
	}, a.logger, a.metrics)

	results := collector.Collect(ctx, events)
	if err := store.WriteClimateResults(ctx, mongodb.CollClimate, results); err != nil {
		return err
	}

	windows := collector.Align(results)
	return store.WriteWindows(ctx, mongodb.CollClimateAligned, windows)
}
