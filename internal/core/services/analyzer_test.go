package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

const structuredDocument = `# Netzplantechnik

Die Netzplantechnik ist ein Verfahren der Projektplanung.

## Vorwärtsrechnung

Die Vorwärtsrechnung bestimmt die frühesten Anfangszeitpunkte.

## Rückwärtsrechnung

Die Rückwärtsrechnung bestimmt die spätesten Endzeitpunkte.

Kritischer Pfad:
Der kritische Pfad verbindet Vorgänge ohne Puffer.
`

func TestRuleAnalyzerExtractsHeadingTopics(t *testing.T) {
	a := NewRuleAnalyzer(DefaultAnalyzerConfig())

	result, err := a.Analyze(context.Background(), structuredDocument, "netzplan.docx")
	require.NoError(t, err)

	titles := result.TopicTitles()
	assert.Contains(t, titles, "Netzplantechnik")
	assert.Contains(t, titles, "Vorwärtsrechnung")
	assert.Contains(t, titles, "Rückwärtsrechnung")
	assert.Equal(t, domain.OriginRules, result.Origin)
	assert.Equal(t, "netzplan.docx", result.DocumentName)
	assert.LessOrEqual(t, len(titles), DefaultAnalyzerConfig().MaxTopics)
}

func TestRuleAnalyzerEmptyDocument(t *testing.T) {
	a := NewRuleAnalyzer(DefaultAnalyzerConfig())

	_, err := a.Analyze(context.Background(), "   \n\t  ", "leer.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestRuleAnalyzerDegenerateInputStillYieldsTopic(t *testing.T) {
	a := NewRuleAnalyzer(DefaultAnalyzerConfig())

	result, err := a.Analyze(context.Background(), "x y z", "kurz.txt")
	require.NoError(t, err)
	require.NotEmpty(t, result.Topics)
	assert.GreaterOrEqual(t, result.UnitCount, 1)
}

func TestComplexityClassification(t *testing.T) {
	cfg := DefaultAnalyzerConfig()

	assert.Equal(t, domain.ComplexityLow, cfg.classifyComplexity(400))
	assert.Equal(t, domain.ComplexityMedium, cfg.classifyComplexity(1500))
	assert.Equal(t, domain.ComplexityMedium, cfg.classifyComplexity(3999))
	assert.Equal(t, domain.ComplexityHigh, cfg.classifyComplexity(4000))
}

func TestUnitCountClamped(t *testing.T) {
	cfg := DefaultAnalyzerConfig()

	assert.Equal(t, 1, cfg.unitCount(0))
	assert.Equal(t, 3, cfg.unitCount(3))
	assert.Equal(t, 7, cfg.unitCount(20))
}

// --- AI analyzer ---

func aiAnalyzerResponse() string {
	return `TOPIC: Netzplantechnik
KEYWORDS: Vorgang, Puffer, kritischer Pfad
COMPLEXITY: high
---
TOPIC: Kostenrechnung
KEYWORDS: Zuschlagssatz, Gemeinkosten
COMPLEXITY: high
---
TOPIC: Netzplantechnik
KEYWORDS: Duplikat
COMPLEXITY: low
` + strings.Repeat(" ", 100)
}

func aiGenerator(responses []string, errs []error) (*Generator, *genMockLLM) {
	llm := &genMockLLM{responses: responses, errs: errs}
	g := NewGenerator(llm, &genMockLimiter{}, &genStubPrompts{template: "analysiere: %s"}, fastGenConfig())
	return g, llm
}

func TestAIAnalyzerParsesTopicBlocks(t *testing.T) {
	g, _ := aiGenerator([]string{aiAnalyzerResponse()}, nil)
	a := NewAIAnalyzer(g, &genStubPrompts{template: "analysiere: %s"}, DefaultAnalyzerConfig())

	words := strings.Repeat("Wort ", 500)
	result, err := a.Analyze(context.Background(), words, "doc.docx")
	require.NoError(t, err)

	require.Len(t, result.Topics, 2, "duplicate topic titles are dropped")
	assert.Equal(t, "Netzplantechnik", result.Topics[0].Title)
	assert.Equal(t, []string{"Vorgang", "Puffer", "kritischer Pfad"}, result.Topics[0].Keywords)
	assert.Equal(t, domain.ComplexityHigh, result.Topics[0].Complexity)
	assert.Equal(t, domain.OriginAI, result.Origin)
	assert.Equal(t, 500, result.WordCount, "word count comes from the text, not the model")
	assert.Equal(t, domain.ComplexityHigh, result.Complexity, "topic majority overrides word count")
}

func TestAIAnalyzerFallsBackOnServiceError(t *testing.T) {
	g, llm := aiGenerator(nil, []error{
		domain.ErrServiceUnavailable, domain.ErrServiceUnavailable, domain.ErrServiceUnavailable,
	})
	a := NewAIAnalyzer(g, &genStubPrompts{template: "analysiere: %s"}, DefaultAnalyzerConfig())

	result, err := a.Analyze(context.Background(), structuredDocument, "doc.docx")
	require.NoError(t, err)
	assert.Equal(t, domain.OriginRules, result.Origin)
	assert.NotEmpty(t, result.Topics)
	assert.Equal(t, 3, llm.calls)
}

func TestAIAnalyzerFallsBackOnUnparseableResponse(t *testing.T) {
	g, _ := aiGenerator([]string{longResponse("völlig freier Text ohne Struktur")}, nil)
	a := NewAIAnalyzer(g, &genStubPrompts{template: "analysiere: %s"}, DefaultAnalyzerConfig())

	result, err := a.Analyze(context.Background(), structuredDocument, "doc.docx")
	require.NoError(t, err)
	assert.Equal(t, domain.OriginRules, result.Origin)
}

func TestAIAnalyzerEmptyDocument(t *testing.T) {
	g, _ := aiGenerator(nil, nil)
	a := NewAIAnalyzer(g, &genStubPrompts{template: "analysiere: %s"}, DefaultAnalyzerConfig())

	_, err := a.Analyze(context.Background(), "", "leer.docx")
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestParseTopicBlocksGermanLabels(t *testing.T) {
	topics := parseTopicBlocks("THEMA: Projektphasen\nKEYWORDS: Initiierung, Abschluss\nCOMPLEXITY: mittel")
	require.Len(t, topics, 1)
	assert.Equal(t, "Projektphasen", topics[0].Title)
	assert.Equal(t, domain.ComplexityMedium, topics[0].Complexity)
}

func TestParseTopicBlocksIgnoresNoise(t *testing.T) {
	response := fmt.Sprintf("Hier sind die Themen:\n\nTOPIC: Einziges Thema\nCOMPLEXITY: low\n\n%s", "Ende der Analyse.")
	topics := parseTopicBlocks(response)
	require.Len(t, topics, 1)
	assert.Equal(t, "Einziges Thema", topics[0].Title)
	assert.Empty(t, topics[0].Keywords)
}
