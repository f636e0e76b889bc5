package services

import (
	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// PlannerConfig sets the base batch size per complexity class. Lower
// complexity documents tolerate larger batches; high complexity ones get
// smaller batches so each call stays focused.
type PlannerConfig struct {
	LowBatchSize    int
	MediumBatchSize int
	HighBatchSize   int
}

// DefaultPlannerConfig returns the standard batch sizing.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		LowBatchSize:    5,
		MediumBatchSize: 4,
		HighBatchSize:   3,
	}
}

func (c PlannerConfig) withDefaults() PlannerConfig {
	def := DefaultPlannerConfig()
	if c.LowBatchSize <= 0 {
		c.LowBatchSize = def.LowBatchSize
	}
	if c.MediumBatchSize <= 0 {
		c.MediumBatchSize = def.MediumBatchSize
	}
	if c.HighBatchSize <= 0 {
		c.HighBatchSize = def.HighBatchSize
	}
	return c
}

func (c PlannerConfig) batchSize(complexity domain.Complexity) int {
	switch complexity {
	case domain.ComplexityLow:
		return c.LowBatchSize
	case domain.ComplexityHigh:
		return c.HighBatchSize
	default:
		return c.MediumBatchSize
	}
}

// Planner splits an analysis result into generation batches.
type Planner struct {
	cfg PlannerConfig
}

// NewPlanner creates a batch planner.
func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{cfg: cfg.withDefaults()}
}

// Plan partitions the topics into ordered batches. Every topic lands in
// exactly one batch and the original topic order is preserved. A small
// final remainder is not emitted as a tiny batch: when the leftover after
// full batches is at most half a batch, the last two batches are rebalanced
// to near-even sizes instead.
func (p *Planner) Plan(analysis *domain.AnalysisResult) []domain.GenerationBatch {
	topics := analysis.Topics
	if len(topics) == 0 {
		return nil
	}

	base := p.cfg.batchSize(analysis.Complexity)
	sizes := batchSizes(len(topics), base)

	batches := make([]domain.GenerationBatch, 0, len(sizes))
	offset := 0
	for i, size := range sizes {
		batches = append(batches, domain.GenerationBatch{
			Index:       i + 1,
			Topics:      topics[offset : offset+size],
			StartNumber: offset + 1,
			EndNumber:   offset + size,
		})
		offset += size
	}

	logger.Debug("planner: %d topics, complexity %s, %d batches", len(topics), analysis.Complexity, len(batches))
	return batches
}

// batchSizes computes the per-batch topic counts for n topics at base
// batch size. The total always sums to n.
func batchSizes(n, base int) []int {
	if base < 1 {
		base = 1
	}
	if n <= base {
		return []int{n}
	}

	full := n / base
	rem := n % base

	sizes := make([]int, full)
	for i := range sizes {
		sizes[i] = base
	}

	switch {
	case rem == 0:
	case rem*2 <= base && full > 0:
		// Fold a small remainder into the tail, split near-evenly.
		tail := base + rem
		sizes[full-1] = tail / 2
		sizes = append(sizes, tail-tail/2)
	default:
		sizes = append(sizes, rem)
	}
	return sizes
}
