package services

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// Ensure RuleAnalyzer implements the interface.
var _ Analyzer = (*RuleAnalyzer)(nil)

// RuleAnalyzer extracts topics with deterministic text heuristics. It is
// the fallback path when the AI analyzer is unavailable or its response
// cannot be parsed, and the sole path when AI analysis is disabled.
type RuleAnalyzer struct {
	cfg AnalyzerConfig
}

// NewRuleAnalyzer creates a rule-based analyzer.
func NewRuleAnalyzer(cfg AnalyzerConfig) *RuleAnalyzer {
	return &RuleAnalyzer{cfg: cfg.withDefaults()}
}

// Heading-like line patterns: markdown headers, numbered headers,
// capitalized lines ending with a colon, bold markers.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#+\s+(.+)$`),
	regexp.MustCompile(`^\d+\.\s+(.+)$`),
	regexp.MustCompile(`^([A-ZÄÖÜ][A-Za-zäöüÄÖÜß0-9 /-]+):\s*$`),
	regexp.MustCompile(`^\*\*(.+)\*\*$`),
}

// capitalizedTerm matches capitalized noun phrases, including German
// umlauts, used for frequency-based topic candidates.
var capitalizedTerm = regexp.MustCompile(`\b[A-ZÄÖÜ][a-zäöüß]+(?:\s+[A-ZÄÖÜ][a-zäöüß]+)*\b`)

// technicalTerm flags topics that warrant a high per-topic complexity.
var technicalTerm = regexp.MustCompile(`(?i)\b(API|System|Framework|Architektur|Protokoll|Datenbank|Algorithmus|Kalkulation|Berechnung)\b`)

// Analyze derives topics, complexity and unit count from the text alone.
// It never calls out; the only failure mode is empty input.
func (a *RuleAnalyzer) Analyze(_ context.Context, text, documentName string) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	candidates := headingCandidates(text)
	candidates = append(candidates, frequentTerms(text, 15)...)

	topics := dedupeTopics(candidates, a.cfg.MaxTopics)
	if len(topics) == 0 {
		// Degenerate input with no structure at all: treat the first
		// line as the single topic so downstream invariants hold.
		topics = []domain.Topic{{
			Title:      firstLine(text),
			Complexity: domain.ComplexityMedium,
		}}
	}

	wordCount := len(strings.Fields(text))
	complexity := a.cfg.classifyComplexity(wordCount)

	return &domain.AnalysisResult{
		DocumentName: documentName,
		WordCount:    wordCount,
		Topics:       topics,
		Complexity:   complexity,
		UnitCount:    a.cfg.unitCount(len(topics)),
		Origin:       domain.OriginRules,
	}, nil
}

// headingCandidates collects heading-like lines in document order.
func headingCandidates(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 5 || len(line) > 100 {
			continue
		}
		for _, p := range headingPatterns {
			if m := p.FindStringSubmatch(line); m != nil {
				out = append(out, strings.TrimSpace(m[1]))
				break
			}
		}
	}
	return out
}

// frequentTerms returns the most repeated capitalized phrases, most
// frequent first. Ties keep first-seen order so the result is stable.
func frequentTerms(text string, limit int) []string {
	freq := make(map[string]int)
	first := make(map[string]int)
	for i, term := range capitalizedTerm.FindAllString(text, -1) {
		if len(term) <= 3 {
			continue
		}
		if _, seen := freq[term]; !seen {
			first[term] = i
		}
		freq[term]++
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return first[terms[i]] < first[terms[j]]
	})

	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

// dedupeTopics builds Topic values from candidate titles, dropping
// case-insensitive duplicates and short fragments, preserving order.
func dedupeTopics(candidates []string, max int) []domain.Topic {
	seen := make(map[string]bool)
	var topics []domain.Topic
	for _, title := range candidates {
		title = strings.TrimSpace(title)
		key := strings.ToLower(title)
		if len(title) <= 5 || seen[key] {
			continue
		}
		seen[key] = true

		complexity := domain.ComplexityLow
		if technicalTerm.MatchString(title) {
			complexity = domain.ComplexityHigh
		} else if len(title) > 30 {
			complexity = domain.ComplexityMedium
		}

		topics = append(topics, domain.Topic{Title: title, Complexity: complexity})
		if len(topics) == max {
			break
		}
	}
	return topics
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			if r := []rune(line); len(r) > 80 {
				line = string(r[:80])
			}
			return line
		}
	}
	return "Allgemeine Grundlagen"
}
