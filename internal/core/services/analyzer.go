// Package services contains the core pipeline services: analysis,
// batch planning, generation, cleaning, validation, assembly and the
// run orchestrator.
package services

import (
	"context"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// Analyzer derives a structural analysis from raw document text. Two
// implementations exist: an AI-backed analyzer and a rule-based one.
// Both produce results of identical shape, so downstream consumers are
// agnostic to origin.
type Analyzer interface {
	Analyze(ctx context.Context, text, documentName string) (*domain.AnalysisResult, error)
}

// AnalyzerConfig bounds the analysis output. The thresholds are heuristic
// tuning, kept configurable rather than hard-coded.
type AnalyzerConfig struct {
	// MaxTopics caps the number of topics carried into generation.
	MaxTopics int

	// MinUnits and MaxUnits clamp the recommended unit count.
	MinUnits int
	MaxUnits int

	// LowWordLimit and MediumWordLimit are the word-count thresholds for
	// the complexity classification. Below LowWordLimit the document is
	// low complexity, below MediumWordLimit medium, otherwise high.
	LowWordLimit    int
	MediumWordLimit int
}

// DefaultAnalyzerConfig returns the standard bounds.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MaxTopics:       7,
		MinUnits:        1,
		MaxUnits:        7,
		LowWordLimit:    1500,
		MediumWordLimit: 4000,
	}
}

func (c AnalyzerConfig) withDefaults() AnalyzerConfig {
	def := DefaultAnalyzerConfig()
	if c.MaxTopics <= 0 {
		c.MaxTopics = def.MaxTopics
	}
	if c.MinUnits <= 0 {
		c.MinUnits = def.MinUnits
	}
	if c.MaxUnits < c.MinUnits {
		c.MaxUnits = def.MaxUnits
	}
	if c.LowWordLimit <= 0 {
		c.LowWordLimit = def.LowWordLimit
	}
	if c.MediumWordLimit <= c.LowWordLimit {
		c.MediumWordLimit = def.MediumWordLimit
	}
	return c
}

// classifyComplexity maps a word count onto the coarse complexity label.
func (c AnalyzerConfig) classifyComplexity(wordCount int) domain.Complexity {
	switch {
	case wordCount < c.LowWordLimit:
		return domain.ComplexityLow
	case wordCount < c.MediumWordLimit:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityHigh
	}
}

// unitCount derives the recommended problem/solution pair count from the
// topic count, clamped to the configured bounds.
func (c AnalyzerConfig) unitCount(topicCount int) int {
	n := topicCount
	if n > c.MaxTopics {
		n = c.MaxTopics
	}
	if n < c.MinUnits {
		n = c.MinUnits
	}
	if n > c.MaxUnits {
		n = c.MaxUnits
	}
	return n
}
