// Command etl runs the wildfire training-data pipeline: collect raw incident
// layers, reconcile them into canonical events, join them with historical
// climate windows, and flatten the result into training features.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "etl",
		Short:         "Wildfire training-data ETL pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCollectCmd(),
		newClimateCmd(),
		newCombineCmd(),
		newRunCmd(),
		newReportCmd(),
		newValidateCmd(),
		newServeCmd(),
	)
	return root
}
