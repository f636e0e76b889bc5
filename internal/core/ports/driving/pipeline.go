// Package driving provides interfaces for entry-point adapters (primary/inbound ports).
package driving

import (
	"context"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// RunOptions configures one batch run.
type RunOptions struct {
	// Limit caps the number of documents processed from the discovery
	// result. Zero defers to the runner configuration: the test-mode cap
	// when test mode is on, otherwise all documents.
	Limit int

	// DryRun discovers and analyzes documents but skips generation,
	// assembly and upload.
	DryRun bool
}

// PipelineRunner drives the full pipeline over every discovered source
// document. Documents are processed sequentially; one document's failure
// never halts the run.
type PipelineRunner interface {
	Run(ctx context.Context, opts RunOptions) (*domain.RunSummary, error)
}

// Discoverer lists the source documents a run would process, for
// inspection before committing to a full run.
type Discoverer interface {
	Discover(ctx context.Context) ([]DiscoveredFile, error)
}

// DiscoveredFile is one listing entry shown by the discover command.
type DiscoveredFile struct {
	ID   string
	Name string
	Path string
}
