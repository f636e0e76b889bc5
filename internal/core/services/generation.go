package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// GenerationConfig tunes the generation client.
type GenerationConfig struct {
	// PrimaryModel is tried first; FallbackModel takes over within a
	// call after FallbackAfter consecutive primary failures.
	PrimaryModel  string
	FallbackModel string
	FallbackAfter int

	// MaxRetries bounds the attempts per call.
	MaxRetries int

	// Timeout bounds each underlying service call.
	Timeout time.Duration

	// BackoffBase and BackoffMax shape the exponential retry delay.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// ChunkThreshold is the content size (chars) above which the
	// chunking path compresses the document before generating.
	ChunkThreshold int

	// SummaryTarget is the requested summary length (chars).
	SummaryTarget int

	// MinResponseChars rejects degenerate responses as transient.
	MinResponseChars int

	MaxTokens   int
	Temperature float64
	TopP        float64
}

// DefaultGenerationConfig returns the standard client tuning.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		FallbackAfter:    2,
		MaxRetries:       3,
		Timeout:          300 * time.Second,
		BackoffBase:      5 * time.Second,
		BackoffMax:       30 * time.Second,
		ChunkThreshold:   10000,
		SummaryTarget:    3000,
		MinResponseChars: 100,
		MaxTokens:        8192,
		Temperature:      0.7,
		TopP:             0.9,
	}
}

func (c GenerationConfig) withDefaults() GenerationConfig {
	def := DefaultGenerationConfig()
	if c.FallbackAfter <= 0 {
		c.FallbackAfter = def.FallbackAfter
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = def.BackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = def.BackoffMax
	}
	if c.ChunkThreshold <= 0 {
		c.ChunkThreshold = def.ChunkThreshold
	}
	if c.SummaryTarget <= 0 {
		c.SummaryTarget = def.SummaryTarget
	}
	if c.MinResponseChars <= 0 {
		c.MinResponseChars = def.MinResponseChars
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	return c
}

// Generator is the generation client: a rate-limited, retrying wrapper
// around the generative-language service. Stateless between calls except
// for the shared limiter it was constructed with.
type Generator struct {
	llm     driven.LLMService
	limiter driven.Limiter
	prompts driven.PromptStore
	cfg     GenerationConfig
}

// NewGenerator creates a generation client. The limiter is shared state:
// inject the same instance wherever the same external rate budget applies.
func NewGenerator(llm driven.LLMService, limiter driven.Limiter, prompts driven.PromptStore, cfg GenerationConfig) *Generator {
	return &Generator{
		llm:     llm,
		limiter: limiter,
		prompts: prompts,
		cfg:     cfg.withDefaults(),
	}
}

// Ping verifies the underlying service is reachable.
func (g *Generator) Ping(ctx context.Context) error {
	return g.llm.Ping(ctx)
}

// GenerateFromPrompt generates text for a complete prompt. Transient
// failures (timeout, outage, rate limit) are retried with exponential
// backoff; a permanent rejection is escalated immediately. After
// FallbackAfter consecutive failures the fallback model is used for the
// remaining attempts. Exhaustion returns domain.ErrGenerationFailed
// wrapping the last underlying error.
func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt, contentType string) (string, error) {
	var lastErr error
	failures := 0

	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}

		model := g.cfg.PrimaryModel
		if g.cfg.FallbackModel != "" && failures >= g.cfg.FallbackAfter {
			model = g.cfg.FallbackModel
			logger.Warn("generation: switching to fallback model %s for %s", model, contentType)
		}

		logger.Debug("generation: %s attempt %d/%d", contentType, attempt, g.cfg.MaxRetries)

		callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		text, err := g.llm.Generate(callCtx, prompt, driven.GenerateOptions{
			Model:       model,
			MaxTokens:   g.cfg.MaxTokens,
			Temperature: g.cfg.Temperature,
			TopP:        g.cfg.TopP,
			Timeout:     g.cfg.Timeout,
		})
		cancel()

		if err == nil {
			text = strings.TrimSpace(text)
			if len(text) >= g.cfg.MinResponseChars {
				logger.Debug("generation: %s produced %d chars", contentType, len(text))
				return text, nil
			}
			err = fmt.Errorf("%w: response too short (%d chars)", domain.ErrServiceUnavailable, len(text))
		}

		if errors.Is(err, domain.ErrPermanentRejection) {
			return "", err
		}
		if errors.Is(err, domain.ErrRateLimited) {
			g.limiter.RecordRateLimitError(0)
		}

		lastErr = err
		failures++

		if attempt < g.cfg.MaxRetries {
			delay := g.backoff(attempt)
			logger.Warn("generation: %s attempt %d failed (%v), retrying in %s", contentType, attempt, err, delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return "", fmt.Errorf("%w: %s after %d attempts: %w", domain.ErrGenerationFailed, contentType, g.cfg.MaxRetries, lastErr)
}

// GenerateWithChunking generates against document content that may be
// too large for one call. Oversized content is first compressed into a
// summary (topics preserved from the analysis); if summarization itself
// fails, the content is truncated at the threshold instead. The build
// function receives the document context that fits and returns the full
// prompt.
func (g *Generator) GenerateWithChunking(ctx context.Context, content string, analysis *domain.AnalysisResult, contentType string, build func(docContext string) string) (string, error) {
	docContext := content

	if len(content) > g.cfg.ChunkThreshold {
		logger.Info("generation: content is %d chars, compressing before %s", len(content), contentType)
		summary, err := g.summarise(ctx, content)
		if err != nil {
			logger.Warn("generation: summarization failed (%v), truncating instead", err)
			docContext = truncateChars(content, g.cfg.ChunkThreshold)
		} else {
			docContext = g.summaryContext(summary, content, analysis)
		}
	}

	return g.GenerateFromPrompt(ctx, build(docContext), contentType)
}

// summaryContext frames a compressed summary so the model still sees the
// document opening and the identified topics.
func (g *Generator) summaryContext(summary, content string, analysis *domain.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("DOKUMENT-ZUSAMMENFASSUNG:\n")
	b.WriteString(summary)
	if analysis != nil && len(analysis.Topics) > 0 {
		b.WriteString("\n\nIDENTIFIZIERTE THEMEN:\n")
		for _, t := range analysis.Topics {
			b.WriteString("- ")
			b.WriteString(t.Title)
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "\nDOKUMENT-ANFANG (Auszug):\n%s\n", truncateChars(content, 1500))
	return b.String()
}

// summarise asks the service for a compressed rendition of the content.
func (g *Generator) summarise(ctx context.Context, content string) (string, error) {
	template, err := g.prompts.Load(driven.PromptSummarise)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(template, g.cfg.SummaryTarget, truncateChars(content, 4*g.cfg.ChunkThreshold))
	return g.GenerateFromPrompt(ctx, prompt, "summary")
}

// backoff returns the delay before the next attempt: base doubled per
// attempt, capped.
func (g *Generator) backoff(attempt int) time.Duration {
	delay := g.cfg.BackoffBase << (attempt - 1)
	if delay > g.cfg.BackoffMax {
		delay = g.cfg.BackoffMax
	}
	return delay
}

// truncateChars cuts s to at most n bytes without splitting a rune.
func truncateChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
