package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/clearview-uk/clearview/internal/pipeline"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <filings-dir>",
		Short: "Bulk-parse a directory of iXBRL filings into the local store",
		Long: `Walk a directory of downloaded iXBRL accounts filings, extract
canonical financial statements and persist them.

Filings already in the store are skipped, so an interrupted run can
simply be started again. Unparseable filings are recorded as failures
and never stop the batch; inspect them with 'clearview failures'.`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().Int("workers", pipeline.DefaultWorkers, "Number of parallel parse workers")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	stage := pipeline.NewParseStage(store, resolver, workers, !noProgress)
	stats, err := stage.Run(ctx, args[0])
	if err != nil {
		return fmt.Errorf("bulk parse: %w", err)
	}

	slog.Info("Parse run complete",
		"run_id", stats.RunID,
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duration", stats.Duration.Round(timeRounding))

	if stats.Failed > 0 {
		slog.Warn("Some filings failed; inspect them with: clearview failures --run-id " + stats.RunID)
	}
	return nil
}
