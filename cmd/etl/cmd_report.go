package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
)

func newReportCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		props      []string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Transform scraped incident-summary report rows into wildfire rows",
		Long: `Transform rows scraped from the historical incident-summary reports
(2002-2013 layouts) into typed wildfire rows. Input is a JSON array of
index-keyed rows, header row first, as the table scraper emits them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			tz, err := a.timezoneResolver()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("read report rows: %w", err)
			}
			var rows []domain.ReportRow
			if err := json.Unmarshal(data, &rows); err != nil {
				return fmt.Errorf("parse report rows: %w", err)
			}

			out := domain.TransformReportRows(rows, domain.ReportConfig{Props: props}, tz)
			a.logger.Info("report rows transformed", "rows", len(rows)-1, "wildfires", len(out))

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encode wildfire rows: %w", err)
			}
			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write(append(encoded, '\n'))
				return err
			}
			return os.WriteFile(outputPath, encoded, 0o644)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to scraped report rows (JSON)")
	cmd.Flags().StringVar(&outputPath, "output", "", "output path (default stdout)")
	cmd.Flags().StringSliceVar(&props, "props", nil, "columns to keep (default all)")
	cmd.MarkFlagRequired("input") //nolint:errcheck

	return cmd
}
