package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func failuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List failures recorded during a bulk run",
		RunE:  runFailures,
	}

	cmd.Flags().String("run-id", "", "Run ID to inspect")
	_ = cmd.MarkFlagRequired("run-id")

	return cmd
}

func runFailures(cmd *cobra.Command, _ []string) error {
	runID, _ := cmd.Flags().GetString("run-id")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	failures, err := store.GetFailures(ctx, runID)
	if err != nil {
		return err
	}

	if len(failures) == 0 {
		fmt.Printf("No failures recorded for run %s\n", runID)
		return nil
	}

	for _, f := range failures {
		company := f.CompanyNumber
		if company == "" {
			company = "-"
		}
		fmt.Printf("%s  [%s]  company=%s  source=%s\n    %s\n",
			f.OccurredAt.Format("2006-01-02 15:04:05"), f.Stage, company, f.Source, f.Error)
	}
	fmt.Printf("%d failure(s)\n", len(failures))
	return nil
}
