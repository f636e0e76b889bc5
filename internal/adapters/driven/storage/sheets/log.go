// Package sheets implements the tracking log on a Google Sheets
// spreadsheet: one appended row per processed document.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/wmc-labs/ditele-cli/internal/connectors/google"
	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// Ensure Log implements the interface.
var _ driven.TrackingLog = (*Log)(nil)

// DefaultRange is the sheet range rows are appended to.
const DefaultRange = "Tracking!A:G"

// Log appends tracking rows to a spreadsheet. Appends are best-effort by
// contract; the caller decides what a failure means.
type Log struct {
	svc           *sheets.Service
	spreadsheetID string
	appendRange   string
	limiter       *google.RateLimiter
}

// NewLog creates a Sheets-backed tracking log.
func NewLog(svc *sheets.Service, spreadsheetID string) *Log {
	return &Log{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		appendRange:   DefaultRange,
		limiter:       google.NewRateLimiter(google.ServiceSheets),
	}
}

// WithRange overrides the append range and returns the log.
func (l *Log) WithRange(appendRange string) *Log {
	if appendRange != "" {
		l.appendRange = appendRange
	}
	return l
}

// Append writes one tracking row.
func (l *Log) Append(ctx context.Context, rec domain.TrackingRecord) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, l.appendRange, &sheets.ValueRange{
		Values: [][]any{buildRow(rec)},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append tracking row: %w", google.WrapError(err))
	}

	logger.Debug("sheets: tracked %s (%s)", rec.DocumentName, rec.Status)
	return nil
}

// buildRow flattens a tracking record into the fixed seven-column layout.
func buildRow(rec domain.TrackingRecord) []any {
	return []any{
		rec.ProcessedAt.Format("02.01.2006 15:04:05"),
		rec.DocumentName,
		rec.SourceFileID,
		string(rec.Status),
		rec.OutputFolderID,
		strings.Join(rec.OutputFiles, ", "),
		rec.Notes,
	}
}
