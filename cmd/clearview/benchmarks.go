package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/clearview-uk/clearview/internal/benchmark"
	"github.com/clearview-uk/clearview/internal/config"
)

func benchmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmarks <table.yaml>",
		Short: "Validate and summarize a sector benchmark table",
		Long: `Load a sector benchmark table, run its validation rules and print a
summary of the sectors it covers. Use this before pointing a scoring
run at a new table.`,
		Args: cobra.ExactArgs(1),
		RunE: runBenchmarks,
	}
	return cmd
}

func runBenchmarks(_ *cobra.Command, args []string) error {
	table, err := benchmark.Load(config.ExpandPath(args[0]))
	if err != nil {
		return err
	}

	fmt.Printf("Benchmark table %s: %d sectors\n", table.Version, len(table.Sectors))
	fmt.Printf("Calibration: intercept=%.3f leverage=%.3f net_asset_sign=%.3f current_ratio=%.3f (cap %.2f)\n",
		table.Calibration.Intercept,
		table.Calibration.LeverageWeight,
		table.Calibration.NetAssetSignWeight,
		table.Calibration.CurrentRatioWeight,
		table.Calibration.CurrentRatioCap)

	codes := make([]string, 0, len(table.Sectors))
	for code := range table.Sectors {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		sector := table.Sectors[code]
		fmt.Printf("  %s  %-30s ebit_margin=[%.3f, %.3f]  asset_turnover=[%.2f, %.2f]\n",
			code, sector.Name,
			sector.EBITMargin.Low, sector.EBITMargin.High,
			sector.AssetTurnover.Low, sector.AssetTurnover.High)
	}
	return nil
}
