package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/clearview-uk/clearview/internal/pipeline"
)

func featuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Build trajectory feature vectors from stored statements",
		Long: `Build a multi-year trajectory feature vector for every company in the
local store. Vectors carry percent changes, decline streaks and sign
flips per metric; companies with too little history get the -999
insufficient-history sentinel rather than fabricated trends.

With --company, print that company's stored vector as JSON instead of
rebuilding anything.`,
		RunE: runFeatures,
	}

	cmd.Flags().String("company", "", "Print the stored vector for one company number")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

func runFeatures(cmd *cobra.Command, _ []string) error {
	companyNumber, _ := cmd.Flags().GetString("company")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if companyNumber != "" {
		vector, getErr := store.GetFeatureVector(ctx, companyNumber)
		if getErr != nil {
			return getErr
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(vector)
	}

	stage := pipeline.NewFeatureStage(store, !noProgress)
	stats, err := stage.Run(ctx)
	if err != nil {
		return fmt.Errorf("feature build: %w", err)
	}

	slog.Info("Feature run complete",
		"run_id", stats.RunID,
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"duration", stats.Duration.Round(timeRounding))
	return nil
}
