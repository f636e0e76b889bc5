package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/services"
)

// Config is the full run configuration, loaded once at startup.
type Config struct {
	Google   GoogleConfig   `toml:"google"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

// GoogleConfig holds Drive and Sheets settings.
type GoogleConfig struct {
	// CredentialsFile is the path to the service account JSON key.
	CredentialsFile string `toml:"credentials_file"`

	// SourceFolderID is the Drive folder scanned for source documents.
	SourceFolderID string `toml:"source_folder_id"`

	// OutputParentID is the Drive folder under which the per-run output
	// folder is created. Empty means Drive root.
	OutputParentID string `toml:"output_parent_id"`

	// TrackingSpreadsheetID enables the Sheets tracking log when set.
	TrackingSpreadsheetID string `toml:"tracking_spreadsheet_id"`

	// TrackingRange overrides the append range of the tracking log.
	TrackingRange string `toml:"tracking_range"`

	// DriveRequestsPerSecond overrides the Drive API rate limit. Zero
	// keeps the built-in quota tuning.
	DriveRequestsPerSecond float64 `toml:"drive_requests_per_second"`
}

// GeminiConfig holds generation service settings.
type GeminiConfig struct {
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	FallbackModel     string  `toml:"fallback_model"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
	MaxRetries        int     `toml:"max_retries"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxTokens         int     `toml:"max_tokens"`
	Temperature       float64 `toml:"temperature"`
	TopP              float64 `toml:"top_p"`
	ChunkThreshold    int     `toml:"chunk_threshold"`
	SummaryTarget     int     `toml:"summary_target"`
}

// PipelineConfig holds analysis, batching, cleaning and output settings.
type PipelineConfig struct {
	DataDir            string   `toml:"data_dir"`
	PromptDir          string   `toml:"prompt_dir"`
	OutputFolderPrefix string   `toml:"output_folder_prefix"`
	PauseSeconds       int      `toml:"pause_seconds"`
	TestMode           bool     `toml:"test_mode"`
	TestModeLimit      int      `toml:"test_mode_limit"`
	MinContentChars    int      `toml:"min_content_chars"`
	MaxTopics          int      `toml:"max_topics"`
	LowWordLimit       int      `toml:"low_word_limit"`
	MediumWordLimit    int      `toml:"medium_word_limit"`
	LowBatchSize       int      `toml:"low_batch_size"`
	MediumBatchSize    int      `toml:"medium_batch_size"`
	HighBatchSize      int      `toml:"high_batch_size"`
	Denylist           []string `toml:"denylist"`
	RequiredSections   []string `toml:"required_sections"`
}

// DefaultConfigPath returns the standard config file location,
// ~/.ditele/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ditele", "config.toml"), nil
}

// LoadConfig reads and validates the TOML configuration at path.
// If path is empty, the default location is used.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file %s not found", domain.ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case c.Google.CredentialsFile == "":
		return fmt.Errorf("%w: google.credentials_file", domain.ErrMissingConfig)
	case c.Google.SourceFolderID == "":
		return fmt.Errorf("%w: google.source_folder_id", domain.ErrMissingConfig)
	case c.Gemini.APIKey == "":
		return fmt.Errorf("%w: gemini.api_key", domain.ErrMissingConfig)
	}
	if _, err := os.Stat(c.Google.CredentialsFile); err != nil {
		return fmt.Errorf("%w: google.credentials_file %s is not readable",
			domain.ErrMissingConfig, c.Google.CredentialsFile)
	}
	return nil
}

// GenerationConfig maps the gemini section onto the generation service
// configuration. Zero values fall through to service defaults.
func (c *Config) GenerationConfig() services.GenerationConfig {
	return services.GenerationConfig{
		PrimaryModel:   c.Gemini.Model,
		FallbackModel:  c.Gemini.FallbackModel,
		MaxRetries:     c.Gemini.MaxRetries,
		Timeout:        time.Duration(c.Gemini.TimeoutSeconds) * time.Second,
		ChunkThreshold: c.Gemini.ChunkThreshold,
		SummaryTarget:  c.Gemini.SummaryTarget,
		MaxTokens:      c.Gemini.MaxTokens,
		Temperature:    c.Gemini.Temperature,
		TopP:           c.Gemini.TopP,
	}
}

// AnalyzerConfig maps the pipeline section onto the analyzer bounds.
func (c *Config) AnalyzerConfig() services.AnalyzerConfig {
	return services.AnalyzerConfig{
		MaxTopics:       c.Pipeline.MaxTopics,
		LowWordLimit:    c.Pipeline.LowWordLimit,
		MediumWordLimit: c.Pipeline.MediumWordLimit,
	}
}

// PlannerConfig maps the pipeline section onto the batch planner.
func (c *Config) PlannerConfig() services.PlannerConfig {
	return services.PlannerConfig{
		LowBatchSize:    c.Pipeline.LowBatchSize,
		MediumBatchSize: c.Pipeline.MediumBatchSize,
		HighBatchSize:   c.Pipeline.HighBatchSize,
	}
}

// CleanerConfig maps the pipeline section onto the cleaner.
func (c *Config) CleanerConfig() services.CleanerConfig {
	return services.CleanerConfig{
		Denylist: c.Pipeline.Denylist,
	}
}

// RunnerConfig maps google and pipeline sections onto the orchestrator.
func (c *Config) RunnerConfig() services.RunnerConfig {
	cfg := services.RunnerConfig{
		SourceFolderID:     c.Google.SourceFolderID,
		OutputParentID:     c.Google.OutputParentID,
		OutputFolderPrefix: c.Pipeline.OutputFolderPrefix,
		TestMode:           c.Pipeline.TestMode,
		TestModeLimit:      c.Pipeline.TestModeLimit,
		MinContentChars:    c.Pipeline.MinContentChars,
	}
	if c.Pipeline.PauseSeconds > 0 {
		cfg.PauseBetweenDocs = time.Duration(c.Pipeline.PauseSeconds) * time.Second
	}
	return cfg
}

// RequiredSections returns the configured section markers, or the
// validator defaults when unset.
func (c *Config) RequiredSections() []string {
	if len(c.Pipeline.RequiredSections) > 0 {
		return c.Pipeline.RequiredSections
	}
	return services.DefaultRequiredSections()
}
