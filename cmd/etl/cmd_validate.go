package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/pipeline"
)

func newValidateCmd() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the reconciliation core over a raw-record fixture and report stage counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			tz, err := a.timezoneResolver()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(fixturePath)
			if err != nil {
				return fmt.Errorf("read fixture: %w", err)
			}
			var records []domain.RawRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse fixture: %w", err)
			}

			out := pipeline.NewStandardizer(tz, a.logger, a.metrics).Run(records)

			report := map[string]int{
				"total":          out.Total,
				"unknown_schema": out.UnknownSchema,
				"unique":         len(out.Unique),
				"duplicates":     out.Duplicates,
				"non_wildfire":   out.NonWildfire,
				"events":         len(out.Events),
			}
			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(encoded, '\n'))
			return err
		},
	}

	cmd.Flags().StringVar(&fixturePath, "file", "", "path to raw records (JSON array)")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}
