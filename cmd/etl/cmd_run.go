package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the whole pipeline: collect, climate, combine",
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

			if err := runCollect(cmd.Context(), a, store); err != nil {
				return err
			}
			if err := runClimate(cmd.Context(), a, store); err != nil {
				return err
			}
			return runCombine(cmd.Context(), a, store)
		},
	}
}
