// Package pipeline runs the bulk stages: parsing filings in parallel,
// scoring stored companies and building trajectory features. A stage never
// aborts on a bad item; failures are recorded against the run ID and the
// batch continues.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/clearview-uk/clearview/internal/common"
	"github.com/clearview-uk/clearview/internal/ixbrl"
	"github.com/clearview-uk/clearview/internal/model"
	"github.com/clearview-uk/clearview/internal/service"
)

// DefaultWorkers is the parse stage's default degree of parallelism.
// Parsing is CPU-bound so a small fixed pool is enough.
const DefaultWorkers = 4

// companyNumberHead caps how much of a filing is sniffed for the company
// number when the filename has none.
const companyNumberHead = 64 * 1024

// ParseStage walks a directory of downloaded iXBRL filings, extracts
// statements and persists them. Already-stored statements are skipped, so
// interrupting and re-running a bulk parse picks up where it left off.
type ParseStage struct {
	storage  service.Storage
	resolver *ixbrl.Resolver
	logger   *slog.Logger
	workers  int
	progress bool
}

// NewParseStage creates a parse stage with the given worker count.
// workers <= 0 selects DefaultWorkers.
func NewParseStage(storage service.Storage, resolver *ixbrl.Resolver, workers int, showProgress bool) *ParseStage {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &ParseStage{
		storage:  storage,
		resolver: resolver,
		logger:   slog.Default().With("component", "parse_stage"),
		workers:  workers,
		progress: showProgress,
	}
}

type stageCounters struct {
	mu        sync.Mutex
	processed int
	succeeded int
	skipped   int
	failed    int
}

// Run parses every filing under dir. It returns stats for the run; the
// returned error covers only setup problems, never per-filing failures.
func (p *ParseStage) Run(ctx context.Context, dir string) (service.RunStats, error) {
	runID := uuid.New().String()
	started := time.Now()

	files, err := listFilings(dir)
	if err != nil {
		return service.RunStats{RunID: runID}, err
	}

	p.logger.Info("starting bulk parse",
		"run_id", runID,
		"filings", len(files),
		"workers", p.workers)

	bar := newBar(len(files), "Parsing filings", p.progress)
	counters := &stageCounters{}
	work := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range work {
				p.processFiling(ctx, runID, path, counters)
				_ = bar.Add(1)
			}
		}()
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return p.stats(runID, counters, started), ctx.Err()
		case work <- path:
		}
	}
	close(work)
	wg.Wait()
	_ = bar.Finish()

	stats := p.stats(runID, counters, started)
	p.logger.Info("bulk parse finished",
		"run_id", runID,
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duration", stats.Duration)
	return stats, nil
}

func (p *ParseStage) processFiling(ctx context.Context, runID, path string, counters *stageCounters) {
	counters.mu.Lock()
	counters.processed++
	counters.mu.Unlock()

	statements, err := p.parseFiling(ctx, path)
	if err != nil {
		p.recordFailure(ctx, runID, path, statements, err)
		counters.mu.Lock()
		counters.failed++
		counters.mu.Unlock()
		return
	}

	var fresh []model.FinancialStatement
	for _, st := range statements {
		exists, hasErr := p.storage.HasStatement(ctx, st.CompanyNumber, st.PeriodEnd)
		if hasErr != nil {
			p.recordFailure(ctx, runID, path, statements, hasErr)
			counters.mu.Lock()
			counters.failed++
			counters.mu.Unlock()
			return
		}
		if !exists {
			fresh = append(fresh, st)
		}
	}

	if len(fresh) == 0 {
		counters.mu.Lock()
		counters.skipped++
		counters.mu.Unlock()
		return
	}

	if err := p.storage.SaveStatements(ctx, fresh); err != nil {
		p.recordFailure(ctx, runID, path, statements, err)
		counters.mu.Lock()
		counters.failed++
		counters.mu.Unlock()
		return
	}

	counters.mu.Lock()
	counters.succeeded++
	counters.mu.Unlock()
}

func (p *ParseStage) parseFiling(ctx context.Context, path string) ([]model.FinancialStatement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filing: %w", err)
	}

	head := data
	if len(head) > companyNumberHead {
		head = head[:companyNumberHead]
	}
	companyNumber := ixbrl.ExtractCompanyNumber(path, head)
	if companyNumber == "" {
		return nil, fmt.Errorf("no company number in %s", filepath.Base(path))
	}

	doc, err := ixbrl.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	statements := p.resolver.Resolve(doc, companyNumber)
	if len(statements) == 0 {
		return nil, common.NewUnparseableError("no usable financial periods")
	}
	return statements, nil
}

func (p *ParseStage) recordFailure(ctx context.Context, runID, path string, statements []model.FinancialStatement, cause error) {
	companyNumber := ""
	if len(statements) > 0 {
		companyNumber = statements[0].CompanyNumber
	}

	p.logger.Warn("filing failed",
		"source", filepath.Base(path),
		"company", companyNumber,
		"error", cause)

	failure := service.FailureRecord{
		RunID:         runID,
		Stage:         "parse",
		CompanyNumber: companyNumber,
		Source:        path,
		Error:         cause.Error(),
		OccurredAt:    time.Now(),
	}
	if err := p.storage.RecordFailure(ctx, failure); err != nil {
		p.logger.Error("failed to record failure", "source", path, "error", err)
	}
}

func (p *ParseStage) stats(runID string, counters *stageCounters, started time.Time) service.RunStats {
	counters.mu.Lock()
	defer counters.mu.Unlock()
	return service.RunStats{
		RunID:     runID,
		Processed: counters.processed,
		Succeeded: counters.succeeded,
		Skipped:   counters.skipped,
		Failed:    counters.failed,
		Duration:  time.Since(started),
	}
}

func listFilings(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read filings directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".html", ".htm", ".xhtml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func newBar(total int, description string, visible bool) *progressbar.ProgressBar {
	if !visible {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
	)
}
