package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
)

// --- Mock implementations for generation testing ---

// genMockLLM implements driven.LLMService with a scripted response per
// call.
type genMockLLM struct {
	responses []string
	errs      []error
	calls     int
	models    []string
}

func (m *genMockLLM) Generate(_ context.Context, _ string, opts driven.GenerateOptions) (string, error) {
	i := m.calls
	m.calls++
	m.models = append(m.models, opts.Model)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var resp string
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return resp, err
}

func (m *genMockLLM) ModelName() string            { return "mock" }
func (m *genMockLLM) Ping(_ context.Context) error { return nil }
func (m *genMockLLM) Close() error                 { return nil }

// genMockLimiter implements driven.Limiter and records interactions.
type genMockLimiter struct {
	waits    int
	recorded int
}

func (m *genMockLimiter) Wait(_ context.Context) error { return nil }
func (m *genMockLimiter) RecordRateLimitError(_ int)   { m.recorded++ }

// genStubPrompts returns the same template for every name.
type genStubPrompts struct {
	template string
	err      error
}

func (p *genStubPrompts) Load(_ string) (string, error) { return p.template, p.err }

func fastGenConfig() GenerationConfig {
	return GenerationConfig{
		PrimaryModel:  "primary",
		FallbackModel: "fallback",
		FallbackAfter: 2,
		MaxRetries:    3,
		BackoffBase:   time.Millisecond,
		BackoffMax:    2 * time.Millisecond,
	}
}

func longResponse(seed string) string {
	return seed + strings.Repeat(" Inhalt", 30)
}

func TestGenerateFromPromptSuccess(t *testing.T) {
	llm := &genMockLLM{responses: []string{longResponse("THEMENLISTE")}}
	limiter := &genMockLimiter{}
	g := NewGenerator(llm, limiter, &genStubPrompts{}, fastGenConfig())

	text, err := g.GenerateFromPrompt(context.Background(), "prompt", "scenario")
	require.NoError(t, err)
	assert.Contains(t, text, "THEMENLISTE")
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "primary", llm.models[0])
}

func TestGenerateFromPromptRetriesTransientErrors(t *testing.T) {
	llm := &genMockLLM{
		errs:      []error{domain.ErrServiceUnavailable, nil},
		responses: []string{"", longResponse("ok")},
	}
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{}, fastGenConfig())

	text, err := g.GenerateFromPrompt(context.Background(), "prompt", "scenario")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Equal(t, 2, llm.calls)
}

func TestGenerateFromPromptPermanentRejectionNotRetried(t *testing.T) {
	llm := &genMockLLM{errs: []error{fmt.Errorf("%w: blocked", domain.ErrPermanentRejection)}}
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{}, fastGenConfig())

	_, err := g.GenerateFromPrompt(context.Background(), "prompt", "scenario")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermanentRejection)
	assert.Equal(t, 1, llm.calls, "permanent rejection must not be retried")
}

func TestGenerateFromPromptExhaustionWrapsGenerationFailed(t *testing.T) {
	llm := &genMockLLM{
		errs: []error{domain.ErrServiceUnavailable, domain.ErrServiceUnavailable, domain.ErrServiceUnavailable},
	}
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{}, fastGenConfig())

	_, err := g.GenerateFromPrompt(context.Background(), "prompt", "scenario")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Equal(t, 3, llm.calls)
}

func TestGenerateFromPromptSwitchesToFallbackModel(t *testing.T) {
	llm := &genMockLLM{
		errs:      []error{domain.ErrServiceUnavailable, domain.ErrServiceUnavailable, nil},
		responses: []string{"", "", longResponse("ok")},
	}
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{}, fastGenConfig())

	_, err := g.GenerateFromPrompt(context.Background(), "prompt", "scenario")
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "primary", "fallback"}, llm.models)
}

func TestGenerateFromPromptRecordsRateLimitErrors(t *testing.T) {
	llm := &genMockLLM{
		errs:      []error{domain.ErrRateLimited, nil},
		responses: []string{"", longResponse("ok")},
	}
	limiter := &genMockLimiter{}
	g := NewGenerator(llm, limiter, &genStubPrompts{}, fastGenConfig())

	_, err := g.GenerateFromPrompt(context.Background(), "prompt", "scenario")
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.recorded)
}

func TestGenerateFromPromptShortResponseIsTransient(t *testing.T) {
	llm := &genMockLLM{responses: []string{"zu kurz", longResponse("ok")}}
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{}, fastGenConfig())

	text, err := g.GenerateFromPrompt(context.Background(), "prompt", "scenario")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(text), 100)
	assert.Equal(t, 2, llm.calls)
}

func TestGenerateWithChunkingSmallContentPassedThrough(t *testing.T) {
	llm := &genMockLLM{responses: []string{longResponse("ok")}}
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{}, fastGenConfig())

	var gotContext string
	_, err := g.GenerateWithChunking(context.Background(), "kurzer Inhalt", nil, "scenario", func(docContext string) string {
		gotContext = docContext
		return "prompt: " + docContext
	})
	require.NoError(t, err)
	assert.Equal(t, "kurzer Inhalt", gotContext)
	assert.Equal(t, 1, llm.calls, "no summarization call for small content")
}

func TestGenerateWithChunkingCompressesLargeContent(t *testing.T) {
	summary := longResponse("ZUSAMMENFASSUNG")
	llm := &genMockLLM{responses: []string{summary, longResponse("ok")}}
	cfg := fastGenConfig()
	cfg.ChunkThreshold = 200
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{template: "fasse zusammen (%d): %s"}, cfg)

	large := strings.Repeat("Wort ", 200)
	analysis := &domain.AnalysisResult{Topics: []domain.Topic{{Title: "Kostenrechnung"}}}

	var gotContext string
	_, err := g.GenerateWithChunking(context.Background(), large, analysis, "scenario", func(docContext string) string {
		gotContext = docContext
		return docContext
	})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls, "one summary call, one generation call")
	assert.Contains(t, gotContext, "ZUSAMMENFASSUNG")
	assert.Contains(t, gotContext, "Kostenrechnung")
}

func TestGenerateWithChunkingTruncatesWhenSummaryFails(t *testing.T) {
	llm := &genMockLLM{
		errs:      []error{domain.ErrServiceUnavailable, domain.ErrServiceUnavailable, domain.ErrServiceUnavailable, nil},
		responses: []string{"", "", "", longResponse("ok")},
	}
	cfg := fastGenConfig()
	cfg.ChunkThreshold = 100
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{template: "fasse zusammen (%d): %s"}, cfg)

	large := strings.Repeat("Wörter ", 100)
	var gotContext string
	_, err := g.GenerateWithChunking(context.Background(), large, nil, "scenario", func(docContext string) string {
		gotContext = docContext
		return docContext
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(gotContext), 100)
	assert.True(t, strings.HasPrefix(large, gotContext))
}

func TestTruncateCharsKeepsRunesIntact(t *testing.T) {
	s := strings.Repeat("ä", 50)
	cut := truncateChars(s, 51)
	assert.Equal(t, 50, len(cut), "must not split a two-byte rune")
	assert.True(t, strings.HasPrefix(s, cut))
}
