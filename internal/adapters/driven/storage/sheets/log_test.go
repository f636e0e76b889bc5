package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

func TestBuildRow(t *testing.T) {
	rec := domain.TrackingRecord{
		DocumentName:   "01_03_FR-660.docx",
		SourceFileID:   "src-1",
		ProcessedAt:    time.Date(2025, 3, 10, 9, 15, 30, 0, time.UTC),
		Status:         domain.StatusCompleted,
		OutputFolderID: "out-1",
		OutputFiles:    []string{"DiTeLe_a.docx", "DiTeLe_b.docx"},
		Notes:          "6 Paare",
	}

	row := buildRow(rec)

	assert.Equal(t, []any{
		"10.03.2025 09:15:30",
		"01_03_FR-660.docx",
		"src-1",
		"completed",
		"out-1",
		"DiTeLe_a.docx, DiTeLe_b.docx",
		"6 Paare",
	}, row)
}

func TestBuildRow_EmptyOptionalFields(t *testing.T) {
	rec := domain.TrackingRecord{
		DocumentName: "x.txt",
		ProcessedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Status:       domain.StatusFailed,
	}

	row := buildRow(rec)

	assert.Len(t, row, 7)
	assert.Equal(t, "failed", row[3])
	assert.Equal(t, "", row[5])
}

func TestWithRange(t *testing.T) {
	log := NewLog(nil, "sheet-1")
	assert.Equal(t, DefaultRange, log.appendRange)

	log.WithRange("Audit!A:G")
	assert.Equal(t, "Audit!A:G", log.appendRange)

	// Empty override keeps the current range.
	log.WithRange("")
	assert.Equal(t, "Audit!A:G", log.appendRange)
}
