package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tindershed/wildfire-data-etl/internal/adapter/mongodb"
	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/pipeline"
)

func newCombineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine",
		Short: "Flatten aligned climate windows into training feature collections",
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

			return runCombine(cmd.Context(), a, store)
		},
	}
}

func runCombine(ctx context.Context, a *app, store *mongodb.Store) error {
	defer a.timeStage("combine")()

	windows, err := store.ReadWindows(ctx, mongodb.CollClimateAligned)
	if err != nil {
		return err
	}
	events, err := store.ReadEvents(ctx, mongodb.CollTraining)
	if err != nil {
		return err
	}
	byID := pipeline.EventMap(events)

	comb := pipeline.NewCombiner(domain.CombineConfig{
		Units: a.cfg.ClimateUnits,
		Props: a.cfg.CombineProps,
	}, a.logger, a.metrics)

	if err := store.WriteFeatures(ctx, mongodb.CollWide, comb.Wide(windows, byID)); err != nil {
		return err
	}
	if err := store.WriteFeatures(ctx, mongodb.CollReduced, comb.Reduced(windows, byID)); err != nil {
		return err
	}
	return store.WriteFeatures(ctx, mongodb.CollNarrow, comb.Narrow(windows, byID))
}
