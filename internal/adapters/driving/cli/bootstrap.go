package cli

import (
	"context"
	"fmt"
	"time"

	configfile "github.com/wmc-labs/ditele-cli/internal/adapters/driven/config/file"
	"github.com/wmc-labs/ditele-cli/internal/adapters/driven/docx"
	"github.com/wmc-labs/ditele-cli/internal/adapters/driven/llm"
	"github.com/wmc-labs/ditele-cli/internal/adapters/driven/llm/gemini"
	drivestore "github.com/wmc-labs/ditele-cli/internal/adapters/driven/storage/drive"
	sheetslog "github.com/wmc-labs/ditele-cli/internal/adapters/driven/storage/sheets"
	"github.com/wmc-labs/ditele-cli/internal/adapters/driven/storage/sqlite"
	"github.com/wmc-labs/ditele-cli/internal/connectors/google"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driving"
	"github.com/wmc-labs/ditele-cli/internal/core/services"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// Injected by ensureWired in production; tests substitute mocks.
var (
	pipelineRunner driving.PipelineRunner
	discoverer     driving.Discoverer
	runHistory     driven.RunStore
)

// ensureWired builds the full service graph from configuration. Called
// lazily by commands that need it, so that version and help work without
// a config file.
func ensureWired(ctx context.Context) error {
	if pipelineRunner != nil {
		return nil
	}

	cfg, err := configfile.LoadConfig(configPath)
	if err != nil {
		return err
	}

	driveSvc, err := google.NewDriveService(ctx, cfg.Google.CredentialsFile)
	if err != nil {
		return fmt.Errorf("connecting to Drive: %w", err)
	}
	store := drivestore.NewStore(driveSvc).
		WithRateLimit(google.RateLimitConfig{RequestsPerSecond: cfg.Google.DriveRequestsPerSecond})

	var tracking driven.TrackingLog
	if cfg.Google.TrackingSpreadsheetID != "" {
		sheetsSvc, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			return fmt.Errorf("connecting to Sheets: %w", err)
		}
		tracking = sheetslog.NewLog(sheetsSvc, cfg.Google.TrackingSpreadsheetID).
			WithRange(cfg.Google.TrackingRange)
	}

	runs, err := sqlite.NewStore(cfg.Pipeline.DataDir)
	if err != nil {
		logger.Warn("Run history unavailable: %v", err)
	} else {
		runHistory = runs
	}

	prompts, err := configfile.NewPromptStore(cfg.Pipeline.PromptDir)
	if err != nil {
		return fmt.Errorf("prompt store: %w", err)
	}

	llmSvc, err := gemini.NewLLMService(gemini.LLMConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("generation service: %w", err)
	}
	limiter := llm.NewRateLimiter(llm.RateLimitConfig{
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
	})

	generator := services.NewGenerator(llmSvc, limiter, prompts, cfg.GenerationConfig())
	analyzer := services.NewAIAnalyzer(generator, prompts, cfg.AnalyzerConfig())
	assembler := services.NewAssembler(docx.NewWriter(), services.AssemblerConfig{})

	runner := services.NewRunner(services.RunnerDeps{
		Store:     store,
		Tracking:  tracking,
		Runs:      runHistory,
		Prompts:   prompts,
		Analyzer:  analyzer,
		Planner:   services.NewPlanner(cfg.PlannerConfig()),
		Generator: generator,
		Cleaner:   services.NewCleaner(cfg.CleanerConfig()),
		Validator: services.NewValidator(cfg.RequiredSections()),
		Assembler: assembler,
	}, cfg.RunnerConfig())

	pipelineRunner = runner
	discoverer = runner
	return nil
}

// closeWiring releases resources opened by ensureWired.
func closeWiring() {
	if runHistory != nil {
		if err := runHistory.Close(); err != nil {
			logger.Warn("Closing run history: %v", err)
		}
		runHistory = nil
	}
}
