package domain

import (
	"strings"
	"time"
)

// SourceDocument is a source file read from the document store.
// It is immutable once created; the runner discards it after the
// corresponding output has been produced.
type SourceDocument struct {
	// ID is the storage-provider file identifier.
	ID string

	// Name is the display name of the file, including extension.
	Name string

	// Path is the folder path the file was discovered under.
	Path string

	// Content is the raw extracted text.
	Content string

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int
}

// NewSourceDocument builds a SourceDocument from extracted text.
func NewSourceDocument(id, name, path, content string) SourceDocument {
	return SourceDocument{
		ID:        id,
		Name:      name,
		Path:      path,
		Content:   content,
		WordCount: len(strings.Fields(content)),
	}
}

// BaseName returns the document name without its extension.
func (d SourceDocument) BaseName() string {
	name := d.Name
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}

// Complexity is the coarse classification of a source document.
// It drives batch sizing: simpler documents allow more topics per
// generation call.
type Complexity string

const (
	// ComplexityLow marks short, conceptual documents.
	ComplexityLow Complexity = "low"
	// ComplexityMedium marks documents of moderate length and depth.
	ComplexityMedium Complexity = "medium"
	// ComplexityHigh marks long or technically dense documents.
	ComplexityHigh Complexity = "high"
)

// AnalysisOrigin records which analyzer produced an AnalysisResult.
type AnalysisOrigin string

const (
	// OriginAI marks a result derived from the generation service.
	OriginAI AnalysisOrigin = "ai"
	// OriginRules marks a result derived from the rule-based heuristics.
	OriginRules AnalysisOrigin = "rules"
)

// Topic is a single subject extracted from a source document.
type Topic struct {
	// Title is the topic heading. Non-empty.
	Title string

	// Keywords are supporting terms found near the topic.
	Keywords []string

	// Complexity is the per-topic classification.
	Complexity Complexity
}

// AnalysisResult is the structural analysis of one source document.
// Both analyzer implementations produce the same shape, so downstream
// consumers are agnostic to origin. Never mutated after creation.
type AnalysisResult struct {
	DocumentName string
	WordCount    int

	// Topics is ordered, deduplicated (case-insensitive) and non-empty
	// for any non-empty input.
	Topics []Topic

	// Complexity is the document-level classification.
	Complexity Complexity

	// UnitCount is the recommended number of problem/solution pairs,
	// clamped to the configured bounds.
	UnitCount int

	Origin AnalysisOrigin
}

// TopicTitles returns the ordered topic titles.
func (a AnalysisResult) TopicTitles() []string {
	titles := make([]string, len(a.Topics))
	for i, t := range a.Topics {
		titles[i] = t.Title
	}
	return titles
}

// GenerationBatch is one generation call's worth of topics. Batches for
// a document are contiguous, non-overlapping slices of the topic list;
// their concatenation covers every topic exactly once in order.
type GenerationBatch struct {
	// Index is 1-based and determines concatenation order.
	Index int

	// Topics is the contiguous topic slice for this batch.
	Topics []Topic

	// StartNumber and EndNumber are the problem numbers this batch is
	// expected to produce, for numbering continuity across batches.
	StartNumber int
	EndNumber   int
}

// GeneratedSection is the raw text returned for one batch.
type GeneratedSection struct {
	BatchIndex int
	Content    string
}

// ValidationReport lists which required sections were found in an
// assembled document text. Missing sections are warnings, not failures.
type ValidationReport struct {
	Present []string
	Missing []string
}

// Complete reports whether every required section was found.
func (r ValidationReport) Complete() bool {
	return len(r.Missing) == 0
}

// OutputFile is an assembled artifact ready for upload.
type OutputFile struct {
	Name     string
	FolderID string
	Content  []byte
}

// DocumentStatus is the terminal state of one document in a run.
type DocumentStatus string

const (
	// StatusCompleted marks a document that was uploaded successfully.
	StatusCompleted DocumentStatus = "completed"
	// StatusFailed marks a document whose pipeline raised at any stage.
	StatusFailed DocumentStatus = "failed"
)

// Pipeline stage names, used for failure attribution in run summaries.
const (
	StageExtracting = "extracting"
	StageAnalyzing  = "analyzing"
	StagePlanning   = "planning"
	StageGenerating = "generating"
	StageCleaning   = "cleaning"
	StageValidating = "validating"
	StageAssembling = "assembling"
	StageUploading  = "uploading"
)

// DocumentResult is the outcome of processing one source document.
type DocumentResult struct {
	Name       string
	SourceID   string
	Status     DocumentStatus
	Stage      string
	Error      string
	OutputName string
	PairCount  int
	Missing    []string
	Duration   time.Duration
}

// RunSummary aggregates the outcomes of one batch run. Produced once at
// the end of a run; one tracking row is written per document, not per run.
type RunSummary struct {
	RunID          string
	Started        time.Time
	Finished       time.Time
	OutputFolderID string
	Results        []DocumentResult
}

// Attempted returns the number of documents processed.
func (s RunSummary) Attempted() int { return len(s.Results) }

// Succeeded returns the number of completed documents.
func (s RunSummary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Failed returns the number of failed documents.
func (s RunSummary) Failed() int { return s.Attempted() - s.Succeeded() }

// TrackingRecord is one audit row appended to the tracking log.
type TrackingRecord struct {
	DocumentName   string
	SourceFileID   string
	ProcessedAt    time.Time
	Status         DocumentStatus
	OutputFolderID string
	OutputFiles    []string
	Notes          string
}
