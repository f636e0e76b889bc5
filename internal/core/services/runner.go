package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driving"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// RunnerConfig sets the orchestration behavior.
type RunnerConfig struct {
	// SourceFolderID is the folder scanned for source documents.
	SourceFolderID string

	// OutputParentID is the folder run output folders are created under.
	OutputParentID string

	// OutputFolderPrefix names run output folders; a timestamp is
	// appended per run.
	OutputFolderPrefix string

	// PauseBetweenDocs is the mandatory delay between documents, to
	// respect the generation service's rate budget across documents.
	PauseBetweenDocs time.Duration

	// TestMode restricts runs to the first TestModeLimit documents
	// unless an explicit limit is given.
	TestMode bool

	// TestModeLimit caps the documents processed when TestMode is on
	// and the run carries no explicit limit.
	TestModeLimit int

	// MinContentChars rejects documents whose extracted text is shorter.
	MinContentChars int
}

// DefaultRunnerConfig returns the standard orchestration tuning.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		OutputFolderPrefix: "DiTeLe_Szenarien",
		PauseBetweenDocs:   15 * time.Second,
		TestModeLimit:      2,
		MinContentChars:    100,
	}
}

func (c RunnerConfig) withDefaults() RunnerConfig {
	def := DefaultRunnerConfig()
	if c.OutputFolderPrefix == "" {
		c.OutputFolderPrefix = def.OutputFolderPrefix
	}
	if c.PauseBetweenDocs <= 0 {
		c.PauseBetweenDocs = def.PauseBetweenDocs
	}
	if c.TestModeLimit <= 0 {
		c.TestModeLimit = def.TestModeLimit
	}
	if c.MinContentChars <= 0 {
		c.MinContentChars = def.MinContentChars
	}
	return c
}

// Runner drives the full pipeline: discovery, then per document
// analysis, planning, batched generation, cleaning, validation, assembly
// and upload. Documents are processed strictly sequentially; a failure
// inside one document's pipeline is recorded and the run moves on.
type Runner struct {
	store     driven.DocumentStore
	tracking  driven.TrackingLog
	runs      driven.RunStore
	prompts   driven.PromptStore
	analyzer  Analyzer
	planner   *Planner
	generator *Generator
	cleaner   *Cleaner
	validator *Validator
	assembler *Assembler
	cfg       RunnerConfig

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

var (
	_ driving.PipelineRunner = (*Runner)(nil)
	_ driving.Discoverer     = (*Runner)(nil)
)

// RunnerDeps bundles the collaborators a Runner needs. Tracking and Runs
// are optional; nil disables them.
type RunnerDeps struct {
	Store     driven.DocumentStore
	Tracking  driven.TrackingLog
	Runs      driven.RunStore
	Prompts   driven.PromptStore
	Analyzer  Analyzer
	Planner   *Planner
	Generator *Generator
	Cleaner   *Cleaner
	Validator *Validator
	Assembler *Assembler
}

// NewRunner creates the pipeline orchestrator.
func NewRunner(deps RunnerDeps, cfg RunnerConfig) *Runner {
	return &Runner{
		store:     deps.Store,
		tracking:  deps.Tracking,
		runs:      deps.Runs,
		prompts:   deps.Prompts,
		analyzer:  deps.Analyzer,
		planner:   deps.Planner,
		generator: deps.Generator,
		cleaner:   deps.Cleaner,
		validator: deps.Validator,
		assembler: deps.Assembler,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Discover lists the source documents a run would process, in processing
// order.
func (r *Runner) Discover(ctx context.Context) ([]driving.DiscoveredFile, error) {
	files, err := r.listSources(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]driving.DiscoveredFile, len(files))
	for i, f := range files {
		out[i] = driving.DiscoveredFile{ID: f.ID, Name: f.Name, Path: f.Path}
	}
	return out, nil
}

// listSources lists and orders the source files. Listing order from the
// store is provider-dependent, so files are sorted by name for a
// deterministic processing order.
func (r *Runner) listSources(ctx context.Context) ([]driven.FileInfo, error) {
	files, err := r.store.ListSourceFiles(ctx, r.cfg.SourceFolderID)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Run executes one batch run. Startup failures (credential probe,
// listing, output folder creation) abort the run with an error; once
// document processing begins, Run always returns a summary and a nil
// error, with per-document failures recorded inside the summary.
func (r *Runner) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	if err := r.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("storage credential check failed: %w", err)
	}
	if err := r.generator.Ping(ctx); err != nil {
		return nil, fmt.Errorf("generation service check failed: %w", err)
	}

	files, err := r.listSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing source documents: %w", err)
	}
	limit := opts.Limit
	if limit == 0 && r.cfg.TestMode {
		limit = r.cfg.TestModeLimit
	}
	if limit > 0 && len(files) > limit {
		logger.Info("runner: limiting run to first %d of %d documents", limit, len(files))
		files = files[:limit]
	}

	summary := &domain.RunSummary{
		RunID:   uuid.NewString(),
		Started: r.now(),
	}

	if !opts.DryRun && len(files) > 0 {
		folderName := fmt.Sprintf("%s_%s", r.cfg.OutputFolderPrefix, summary.Started.Format("20060102_150405"))
		folderID, err := r.store.EnsureFolder(ctx, r.cfg.OutputParentID, folderName)
		if err != nil {
			return nil, fmt.Errorf("creating output folder %s: %w", folderName, err)
		}
		summary.OutputFolderID = folderID
		logger.Info("runner: output folder %s (%s)", folderName, folderID)
	}

	for i, file := range files {
		if i > 0 {
			logger.Info("runner: pausing %s before next document", r.cfg.PauseBetweenDocs)
			if err := r.sleep(ctx, r.cfg.PauseBetweenDocs); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		logger.Info("runner: [%d/%d] processing %s", i+1, len(files), file.Name)
		result := r.processDocument(ctx, file, summary.OutputFolderID, opts.DryRun)
		summary.Results = append(summary.Results, result)

		if result.Status == domain.StatusCompleted {
			logger.Info("runner: [%d/%d] %s completed in %s", i+1, len(files), file.Name, result.Duration.Round(time.Second))
		} else {
			logger.Warn("runner: [%d/%d] %s failed at %s: %s", i+1, len(files), file.Name, result.Stage, result.Error)
		}

		r.track(ctx, result, summary.OutputFolderID)
	}

	summary.Finished = r.now()
	r.persist(ctx, summary)

	logger.Info("runner: run %s finished: %d attempted, %d succeeded, %d failed",
		summary.RunID, summary.Attempted(), summary.Succeeded(), summary.Failed())
	return summary, nil
}

// processDocument runs the per-document pipeline. Every failure mode,
// including a panic in a collaborator, is converted into a failed
// DocumentResult here so the run can continue with the next document.
func (r *Runner) processDocument(ctx context.Context, file driven.FileInfo, folderID string, dryRun bool) (result domain.DocumentResult) {
	start := r.now()
	result = domain.DocumentResult{Name: file.Name, SourceID: file.ID}
	defer func() {
		if rec := recover(); rec != nil {
			result.Status = domain.StatusFailed
			result.Error = fmt.Sprintf("panic: %v", rec)
		}
		result.Duration = r.now().Sub(start)
	}()

	fail := func(stage string, err error) domain.DocumentResult {
		result.Status = domain.StatusFailed
		result.Stage = stage
		result.Error = err.Error()
		return result
	}

	result.Stage = domain.StageExtracting
	text, err := r.store.FetchText(ctx, file)
	if err != nil {
		return fail(domain.StageExtracting, err)
	}
	doc := domain.NewSourceDocument(file.ID, file.Name, file.Path, text)
	if len(text) < r.cfg.MinContentChars {
		return fail(domain.StageExtracting, fmt.Errorf("%w: only %d chars extracted", domain.ErrEmptyDocument, len(text)))
	}
	logger.Info("runner: extracted %d chars (%d words) from %s", len(text), doc.WordCount, doc.Name)

	result.Stage = domain.StageAnalyzing
	analysis, err := r.analyzer.Analyze(ctx, doc.Content, doc.Name)
	if err != nil {
		return fail(domain.StageAnalyzing, err)
	}
	logger.Info("runner: %s: %d topics, complexity %s, %d units planned",
		doc.Name, len(analysis.Topics), analysis.Complexity, analysis.UnitCount)

	if dryRun {
		result.Status = domain.StatusCompleted
		result.Stage = ""
		return result
	}

	result.Stage = domain.StagePlanning
	batches := r.planner.Plan(analysis)
	if len(batches) == 0 {
		return fail(domain.StagePlanning, fmt.Errorf("no generation batches for %s", doc.Name))
	}

	result.Stage = domain.StageGenerating
	sections, err := r.generateSections(ctx, doc, analysis, batches)
	if err != nil {
		return fail(domain.StageGenerating, err)
	}

	result.Stage = domain.StageCleaning
	full := r.cleaner.CleanAndRenumber(sections)
	result.PairCount = r.cleaner.PairCount(full)

	result.Stage = domain.StageValidating
	report := r.validator.Validate(full)
	result.Missing = report.Missing
	if !report.Complete() {
		logger.Warn("runner: %s is missing sections: %s", doc.Name, strings.Join(report.Missing, ", "))
	}

	result.Stage = domain.StageAssembling
	out, err := r.assembler.Assemble(full, AssemblyMetadata{
		SourceName: doc.Name,
		Generated:  r.now(),
		WordCount:  doc.WordCount,
		PairCount:  result.PairCount,
		Missing:    report.Missing,
	})
	if err != nil {
		return fail(domain.StageAssembling, err)
	}
	result.OutputName = out.Name

	result.Stage = domain.StageUploading
	if _, err := r.store.Upload(ctx, out.Content, folderID, out.Name); err != nil {
		return fail(domain.StageUploading, err)
	}

	result.Status = domain.StatusCompleted
	result.Stage = ""
	return result
}

// generateSections issues one generation call per batch, strictly in
// index order, then a final checklist pass. The checklist falls back to
// a static rendition when the service cannot produce one, so a document
// never fails on its checklist alone.
func (r *Runner) generateSections(ctx context.Context, doc domain.SourceDocument, analysis *domain.AnalysisResult, batches []domain.GenerationBatch) ([]domain.GeneratedSection, error) {
	mainTmpl, err := r.prompts.Load(driven.PromptScenarioMain)
	if err != nil {
		return nil, err
	}
	contTmpl, err := r.prompts.Load(driven.PromptScenarioContinuation)
	if err != nil {
		return nil, err
	}

	sections := make([]domain.GeneratedSection, 0, len(batches)+1)
	for _, batch := range batches {
		tmpl := contTmpl
		if batch.Index == 1 {
			tmpl = mainTmpl
		}
		topics := topicList(batch.Topics)
		label := fmt.Sprintf("batch %d/%d", batch.Index, len(batches))
		logger.Info("runner: %s: generating %s (problems %d-%d)", doc.Name, label, batch.StartNumber, batch.EndNumber)

		content, err := r.generator.GenerateWithChunking(ctx, doc.Content, analysis, label, func(docContext string) string {
			return fmt.Sprintf(tmpl, docContext, topics, batch.StartNumber, batch.EndNumber)
		})
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", batch.Index, err)
		}
		sections = append(sections, domain.GeneratedSection{BatchIndex: batch.Index, Content: content})
	}

	sections = append(sections, domain.GeneratedSection{
		BatchIndex: len(batches) + 1,
		Content:    r.checklist(ctx, analysis),
	})
	return sections, nil
}

// checklist generates the learning-objectives checklist. On any service
// failure a static checklist built from the topic list is used instead.
func (r *Runner) checklist(ctx context.Context, analysis *domain.AnalysisResult) string {
	tmpl, err := r.prompts.Load(driven.PromptChecklist)
	if err == nil {
		var content string
		content, err = r.generator.GenerateFromPrompt(ctx, fmt.Sprintf(tmpl, topicList(analysis.Topics)), "checklist")
		if err == nil {
			return content
		}
	}
	logger.Warn("runner: checklist generation failed (%v), using static checklist", err)
	return staticChecklist(analysis)
}

func staticChecklist(analysis *domain.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("CHECKLISTE\n\nNach Bearbeitung dieses Szenarios kann ich:\n")
	for _, t := range analysis.Topics {
		fmt.Fprintf(&b, "☐ %s erklären und anwenden\n", t.Title)
	}
	b.WriteString("☐ Die Lösungswege selbstständig nachvollziehen\n")
	b.WriteString("☐ Die Ergebnisse auf Plausibilität prüfen\n")
	return b.String()
}

func topicList(topics []domain.Topic) string {
	var b strings.Builder
	for i, t := range topics {
		fmt.Fprintf(&b, "%d. %s", i+1, t.Title)
		if len(t.Keywords) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(t.Keywords, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// track appends the audit row for one document. Best-effort.
func (r *Runner) track(ctx context.Context, result domain.DocumentResult, folderID string) {
	if r.tracking == nil {
		return
	}
	rec := domain.TrackingRecord{
		DocumentName:   result.Name,
		SourceFileID:   result.SourceID,
		ProcessedAt:    r.now(),
		Status:         result.Status,
		OutputFolderID: folderID,
		Notes:          result.Error,
	}
	if result.OutputName != "" {
		rec.OutputFiles = []string{result.OutputName}
	}
	if err := r.tracking.Append(ctx, rec); err != nil {
		logger.Warn("runner: tracking row for %s failed: %v", result.Name, err)
	}
}

// persist saves the run history. Best-effort.
func (r *Runner) persist(ctx context.Context, summary *domain.RunSummary) {
	if r.runs == nil {
		return
	}
	if err := r.runs.SaveRun(ctx, *summary); err != nil {
		logger.Warn("runner: saving run history failed: %v", err)
		return
	}
	for _, result := range summary.Results {
		if err := r.runs.SaveResult(ctx, summary.RunID, result); err != nil {
			logger.Warn("runner: saving result for %s failed: %v", result.Name, err)
		}
	}
}
