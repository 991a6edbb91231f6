package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tindershed/wildfire-data-etl/internal/adapter/arcgis"
	kafkaadapter "github.com/tindershed/wildfire-data-etl/internal/adapter/kafka"
	"github.com/tindershed/wildfire-data-etl/internal/adapter/mongodb"
	"github.com/tindershed/wildfire-data-etl/internal/pipeline"
)

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch raw incident layers and reconcile them into training events",
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

			return runCollect(cmd.Context(), a, store)
		},
	}
}

func runCollect(ctx context.Context, a *app, store *mongodb.Store) error {
	defer a.timeStage("collect")()

	client := arcgis.NewClient(a.cfg.ArcGISBaseURL, a.cfg.ArcGISTimeout, a.logger)
	layers, err := client.FetchRange(ctx, a.cfg.YearStart, a.cfg.YearEnd)
	if err != nil {
		return fmt.Errorf("collect raw layers: %w", err)
	}
	records := arcgis.Flatten(layers)
	a.metrics.RecordsCollected.Add(float64(len(records)))

	if err := store.WriteYearLayers(ctx, mongodb.CollRaw, layers); err != nil {
		return err
	}
	if err := store.WriteRecords(ctx, mongodb.CollEvents, records); err != nil {
		return err
	}

	tz, err := a.timezoneResolver()
	if err != nil {
		return err
	}
	std := pipeline.NewStandardizer(tz, a.logger, a.metrics)
	out := std.Run(records)

	if err := store.WriteRecords(ctx, mongodb.CollUnique, out.Unique); err != nil {
		return err
	}
	if err := store.WriteRecords(ctx, mongodb.CollWildfires, out.Wildfires); err != nil {
		return err
	}
	if err := store.WriteEvents(ctx, mongodb.CollStandardized, out.Events); err != nil {
		return err
	}

	training := std.FilterTraining(out.Events, a.cfg.TrainingState)
	if err := store.WriteEvents(ctx, mongodb.CollTraining, training); err != nil {
		return err
	}
	if err := store.WriteEventMap(ctx, mongodb.CollMap, training); err != nil {
		return err
	}
	a.logger.Info("training events selected", "state", a.cfg.TrainingState, "events", len(training))

	if a.cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(a.cfg.KafkaBrokers, a.cfg.KafkaSinkTopic, a.logger)
		defer writer.Close() //nolint:errcheck
		if err := writer.PublishEvents(ctx, out.Events); err != nil {
			return err
		}
	}
	return nil
}
