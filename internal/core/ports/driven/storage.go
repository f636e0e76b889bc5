package driven

import (
	"context"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// FileInfo describes a file discovered in the document store.
type FileInfo struct {
	ID       string
	Name     string
	Path     string
	MIMEType string
}

// DocumentStore is the cloud storage gateway: source discovery, text
// extraction and artifact upload.
type DocumentStore interface {
	// ListSourceFiles returns every file with a recognized source
	// extension under folderID, descending into subfolders.
	ListSourceFiles(ctx context.Context, folderID string) ([]FileInfo, error)

	// FetchText returns the plain-text content of a source file.
	// Unrecognized formats fail with domain.ErrUnsupportedFormat.
	FetchText(ctx context.Context, file FileInfo) (string, error)

	// EnsureFolder creates (or finds) a named subfolder of parentID and
	// returns its identifier.
	EnsureFolder(ctx context.Context, parentID, name string) (string, error)

	// Upload writes content as filename into folderID and returns the
	// created file's descriptor.
	Upload(ctx context.Context, content []byte, folderID, filename string) (FileInfo, error)

	// Ping verifies the credential by probing the store. Auth failure is
	// fatal for the whole run and is surfaced here, at startup.
	Ping(ctx context.Context) error
}

// TrackingLog appends audit rows for processed documents. Best-effort:
// callers log failures but never fail a document on them.
type TrackingLog interface {
	Append(ctx context.Context, rec domain.TrackingRecord) error
}

// RunStore persists run history locally for audit. It is never consulted
// to decide what to process; a rerun reprocesses every discovered document.
type RunStore interface {
	SaveRun(ctx context.Context, summary domain.RunSummary) error
	SaveResult(ctx context.Context, runID string, result domain.DocumentResult) error
	Close() error
}

// DocumentRenderer serializes an assembled layout into the target
// word-processor binary format.
type DocumentRenderer interface {
	Render(layout domain.Layout) ([]byte, error)
}
