package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clearview-uk/clearview/internal/common"
	"github.com/clearview-uk/clearview/internal/ixbrl"
	"github.com/clearview-uk/clearview/internal/model"
	"github.com/clearview-uk/clearview/internal/pipeline"
	"github.com/clearview-uk/clearview/internal/registry"
	"github.com/clearview-uk/clearview/internal/score"
	"github.com/clearview-uk/clearview/internal/session"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [filing.html ...]",
		Short: "Score companies from iXBRL filings or the local store",
		Long: `Score one or more iXBRL accounts filings directly, or with --all
score every company already parsed into the local store.

Each company gets the strictest scoring tier its data supports; a
filing with only a balance sheet still receives a rating, marked
"(limited data)". A document with no usable facts rates "unrated".`,
		RunE: runScore,
	}

	cmd.Flags().Bool("all", false, "Score every company in the local store")
	cmd.Flags().String("company", "", "Score a company number from its latest registry filing")
	cmd.Flags().String("sic", "", "SIC code used for sector benchmarks (direct filings only)")
	cmd.Flags().String("benchmarks", "", "Path to the sector benchmark table")
	cmd.Flags().String("filings-dir", "", "Local filings directory supplying registry profiles (with --all)")
	cmd.Flags().Bool("json", false, "Emit results as JSON")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

// scoreOutput is the JSON shape emitted per scored company.
type scoreOutput struct {
	CompanyNumber string   `json:"company_number"`
	PeriodEnd     string   `json:"period_end,omitempty"`
	Tier          string   `json:"tier"`
	Score         *float64 `json:"score"`
	Rating        string   `json:"rating"`
	Signals       []string `json:"signals,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	company, _ := cmd.Flags().GetString("company")

	if all {
		return runScoreAll(cmd)
	}
	if company != "" {
		return runScoreCompany(cmd, company)
	}
	if len(args) == 0 {
		return fmt.Errorf("provide filing paths, --company, or --all")
	}
	return runScoreFiles(cmd, args)
}

func runScoreAll(cmd *cobra.Command) error {
	benchPath, _ := cmd.Flags().GetString("benchmarks")
	filingsDir, _ := cmd.Flags().GetString("filings-dir")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	table, err := loadBenchmarks(benchPath)
	if err != nil {
		return err
	}

	client, err := initRegistry(filingsDir)
	if err != nil {
		return err
	}

	stage := pipeline.NewScoreStage(store, score.NewAssessor(table), client, !noProgress)
	stats, err := stage.Run(ctx)
	if err != nil {
		return fmt.Errorf("bulk score: %w", err)
	}

	slog.Info("Score run complete",
		"run_id", stats.RunID,
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"duration", stats.Duration.Round(timeRounding))
	return nil
}

func runScoreFiles(cmd *cobra.Command, paths []string) error {
	sicCode, _ := cmd.Flags().GetString("sic")
	benchPath, _ := cmd.Flags().GetString("benchmarks")
	asJSON, _ := cmd.Flags().GetBool("json")

	table, err := loadBenchmarks(benchPath)
	if err != nil {
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	assessor := score.NewAssessor(table)
	cache := session.New()

	var outputs []scoreOutput
	for _, path := range paths {
		out, scoreErr := scoreFiling(path, resolver, assessor, cache, sicCode)
		if scoreErr != nil {
			return fmt.Errorf("%s: %w", path, scoreErr)
		}
		outputs = append(outputs, out)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}

	for _, out := range outputs {
		printScore(out)
	}
	return nil
}

// runScoreCompany scores a company number from its most recent accounts
// filing fetched through the registry client.
func runScoreCompany(cmd *cobra.Command, companyNumber string) error {
	sicCode, _ := cmd.Flags().GetString("sic")
	benchPath, _ := cmd.Flags().GetString("benchmarks")
	filingsDir, _ := cmd.Flags().GetString("filings-dir")
	asJSON, _ := cmd.Flags().GetBool("json")

	client, err := initRegistry(filingsDir)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("no filings source configured; pass --filings-dir or set filings.dir")
	}

	table, err := loadBenchmarks(benchPath)
	if err != nil {
		return err
	}

	resolver, err := newResolver()
	if err != nil {
		return err
	}

	out, err := scoreFromRegistry(cmd.Context(), client, resolver, score.NewAssessor(table), session.New(), companyNumber, sicCode)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode([]scoreOutput{out})
	}
	printScore(out)
	return nil
}

func scoreFromRegistry(ctx context.Context, client registry.Client, resolver *ixbrl.Resolver, assessor *score.Assessor, cache *session.Cache, companyNumber, sicCode string) (scoreOutput, error) {
	filings, err := client.ListAccountsFilings(ctx, companyNumber)
	if err != nil {
		return scoreOutput{}, fmt.Errorf("failed to list filings for %s: %w", companyNumber, err)
	}
	if len(filings) == 0 {
		return scoreOutput{}, fmt.Errorf("no accounts filings for %s", companyNumber)
	}

	// Filings arrive newest first.
	body, err := client.GetDocument(ctx, filings[0])
	if err != nil {
		return scoreOutput{}, fmt.Errorf("failed to fetch document for %s: %w", companyNumber, err)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return scoreOutput{}, err
	}

	if sicCode == "" {
		if profile, profileErr := client.GetProfile(ctx, companyNumber); profileErr == nil && len(profile.SICCodes) > 0 {
			sicCode = profile.SICCodes[0]
		}
	}

	return assessDocument(data, companyNumber, resolver, assessor, cache, sicCode)
}

func scoreFiling(path string, resolver *ixbrl.Resolver, assessor *score.Assessor, cache *session.Cache, sicCode string) (scoreOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scoreOutput{}, err
	}

	head := data
	if len(head) > 64*1024 {
		head = head[:64*1024]
	}
	companyNumber := ixbrl.ExtractCompanyNumber(path, head)

	return assessDocument(data, companyNumber, resolver, assessor, cache, sicCode)
}

func assessDocument(data []byte, companyNumber string, resolver *ixbrl.Resolver, assessor *score.Assessor, cache *session.Cache, sicCode string) (scoreOutput, error) {
	var statements []model.FinancialStatement
	ok := false
	if companyNumber != "" {
		statements, ok = cache.Statements(companyNumber)
	}
	if !ok {
		doc, parseErr := ixbrl.Parse(strings.NewReader(string(data)))
		if parseErr != nil {
			if common.IsUnparseable(parseErr) {
				result := score.Unscored()
				slog.Warn("Document unparseable", "company", companyNumber, "error", parseErr)
				return toOutput(companyNumber, nil, result), nil
			}
			return scoreOutput{}, parseErr
		}
		statements = resolver.Resolve(doc, companyNumber)
		if companyNumber != "" {
			cache.PutStatements(companyNumber, statements)
		}
	}

	if len(statements) == 0 {
		return toOutput(companyNumber, nil, score.Unscored()), nil
	}

	latest := &statements[0]
	if result, ok := cache.Result(cacheKey(companyNumber, latest)); ok {
		return toOutput(companyNumber, latest, result), nil
	}

	result := assessor.Assess(latest, sicCode)
	cache.PutResult(cacheKey(companyNumber, latest), result)
	return toOutput(companyNumber, latest, result), nil
}

func cacheKey(companyNumber string, st *model.FinancialStatement) string {
	return companyNumber + "/" + st.PeriodEnd.Format("2006-01-02")
}

func toOutput(companyNumber string, st *model.FinancialStatement, result model.ScoreResult) scoreOutput {
	out := scoreOutput{
		CompanyNumber: companyNumber,
		Tier:          string(result.Tier),
		Score:         result.Score,
		Rating:        result.Rating(),
		Signals:       result.Signals,
	}
	if st != nil {
		out.PeriodEnd = st.PeriodEnd.Format("2006-01-02")
	}
	return out
}

func printScore(out scoreOutput) {
	scoreText := "-"
	if out.Score != nil {
		scoreText = fmt.Sprintf("%.2f", *out.Score)
	}
	fmt.Printf("%s  %-20s score=%s  rating=%s\n", out.CompanyNumber, out.Tier, scoreText, out.Rating)
	for _, signal := range out.Signals {
		fmt.Printf("    ! %s\n", signal)
	}
}
