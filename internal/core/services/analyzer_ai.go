package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// AIAnalyzer asks the generative service to identify topics and assess
// complexity. Any service error, malformed response, or empty topic set
// falls back to the rule-based analyzer, so analysis never fails for a
// non-empty document.
type AIAnalyzer struct {
	generator *Generator
	prompts   driven.PromptStore
	fallback  *RuleAnalyzer
	cfg       AnalyzerConfig
}

var _ Analyzer = (*AIAnalyzer)(nil)

// NewAIAnalyzer creates an analyzer backed by the generation client.
func NewAIAnalyzer(generator *Generator, prompts driven.PromptStore, cfg AnalyzerConfig) *AIAnalyzer {
	cfg = cfg.withDefaults()
	return &AIAnalyzer{
		generator: generator,
		prompts:   prompts,
		fallback:  NewRuleAnalyzer(cfg),
		cfg:       cfg,
	}
}

// Analyze identifies topics via the generative service. Word count and
// unit count are always computed locally from the document text, never
// taken from the model.
func (a *AIAnalyzer) Analyze(ctx context.Context, text, documentName string) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, documentName)
	}

	topics, err := a.requestTopics(ctx, text)
	if err != nil {
		logger.Warn("analysis: service-backed analysis of %s failed (%v), using rule-based fallback", documentName, err)
		return a.fallback.Analyze(ctx, text, documentName)
	}
	if len(topics) == 0 {
		logger.Warn("analysis: service returned no usable topics for %s, using rule-based fallback", documentName)
		return a.fallback.Analyze(ctx, text, documentName)
	}
	if len(topics) > a.cfg.MaxTopics {
		topics = topics[:a.cfg.MaxTopics]
	}

	wordCount := len(strings.Fields(text))
	complexity := a.cfg.classifyComplexity(wordCount)
	// A topic-level complexity majority can override the word-count
	// estimate when the model is confident.
	if c, ok := majorityComplexity(topics); ok {
		complexity = c
	}

	return &domain.AnalysisResult{
		DocumentName: documentName,
		WordCount:    wordCount,
		Topics:       topics,
		Complexity:   complexity,
		UnitCount:    a.cfg.unitCount(len(topics)),
		Origin:       domain.OriginAI,
	}, nil
}

func (a *AIAnalyzer) requestTopics(ctx context.Context, text string) ([]domain.Topic, error) {
	template, err := a.prompts.Load(driven.PromptTopicAnalysis)
	if err != nil {
		return nil, err
	}
	response, err := a.generator.GenerateWithChunking(ctx, text, nil, "topic analysis", func(docContext string) string {
		return fmt.Sprintf(template, docContext)
	})
	if err != nil {
		return nil, err
	}
	return parseTopicBlocks(response), nil
}

// parseTopicBlocks reads the expected response format: topic blocks
// separated by lines of dashes, each block carrying TOPIC:, KEYWORDS:
// and COMPLEXITY: lines. Unrecognized lines are ignored.
func parseTopicBlocks(response string) []domain.Topic {
	var topics []domain.Topic
	for _, block := range strings.Split(response, "---") {
		topic := domain.Topic{}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case hasPrefixFold(line, "TOPIC:"):
				topic.Title = strings.TrimSpace(line[len("TOPIC:"):])
			case hasPrefixFold(line, "THEMA:"):
				topic.Title = strings.TrimSpace(line[len("THEMA:"):])
			case hasPrefixFold(line, "KEYWORDS:"):
				topic.Keywords = splitKeywords(line[len("KEYWORDS:"):])
			case hasPrefixFold(line, "COMPLEXITY:"):
				topic.Complexity = parseComplexity(line[len("COMPLEXITY:"):])
			}
		}
		if topic.Title != "" {
			topics = append(topics, topic)
		}
	}

	seen := map[string]bool{}
	unique := topics[:0]
	for _, t := range topics {
		key := strings.ToLower(t.Title)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, t)
		}
	}
	return unique
}

func splitKeywords(s string) []string {
	var keywords []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func parseComplexity(s string) domain.Complexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "niedrig":
		return domain.ComplexityLow
	case "high", "hoch":
		return domain.ComplexityHigh
	case "medium", "mittel":
		return domain.ComplexityMedium
	default:
		return ""
	}
}

// majorityComplexity returns the most common topic-level complexity when
// more than half the topics declare one.
func majorityComplexity(topics []domain.Topic) (domain.Complexity, bool) {
	counts := map[domain.Complexity]int{}
	for _, t := range topics {
		if t.Complexity != "" {
			counts[t.Complexity]++
		}
	}
	for c, n := range counts {
		if n*2 > len(topics) {
			return c, true
		}
	}
	return "", false
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
