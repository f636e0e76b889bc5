// Package drive implements the document store gateway on Google Drive.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/wmc-labs/ditele-cli/internal/connectors/google"
	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Drive MIME types.
const (
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypeFolder    = "application/vnd.google-apps.folder"
	MimeTypeDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypePDF       = "application/pdf"

	ExportMimeText = "text/plain"
)

// MaxFetchSize is the maximum size for downloaded content (10MB).
const MaxFetchSize = 10 * 1024 * 1024

// listPageSize is the Drive listing page size.
const listPageSize = 100

// Store accesses source documents and output folders on Google Drive.
// All calls go through a shared rate limiter tuned to Drive quotas.
type Store struct {
	svc     *drive.Service
	limiter *google.RateLimiter
}

// NewStore creates a Drive-backed document store.
func NewStore(svc *drive.Service) *Store {
	return &Store{
		svc:     svc,
		limiter: google.NewRateLimiter(google.ServiceDrive),
	}
}

// WithRateLimit overrides the built-in Drive quota tuning and returns
// the store. A zero rate keeps the default limiter.
func (s *Store) WithRateLimit(cfg google.RateLimitConfig) *Store {
	if cfg.RequestsPerSecond > 0 {
		if cfg.BurstSize <= 0 {
			cfg.BurstSize = 1
		}
		s.limiter = google.NewRateLimiterWithConfig(cfg)
	}
	return s
}

// sourceExtensions are the file extensions recognized as source
// documents, besides native Google Docs.
var sourceExtensions = []string{".docx", ".pdf", ".txt"}

// ListSourceFiles returns every source document under folderID,
// descending into subfolders. Office lockfiles (~$ prefix) and trashed
// files are skipped. Listing order is provider-dependent; callers that
// need determinism sort the result.
func (s *Store) ListSourceFiles(ctx context.Context, folderID string) ([]driven.FileInfo, error) {
	type folder struct {
		id   string
		path string
	}

	var files []driven.FileInfo
	queue := []folder{{id: folderID, path: "/"}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		query := fmt.Sprintf("'%s' in parents and trashed = false", current.id)
		pageToken := ""
		for {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			call := s.svc.Files.List().
				Q(query).
				Fields("nextPageToken, files(id, name, mimeType)").
				PageSize(listPageSize).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			page, err := call.Do()
			if err != nil {
				return nil, s.wrap(fmt.Errorf("list folder %s: %w", current.id, err))
			}

			for _, f := range page.Files {
				switch {
				case f.MimeType == MimeTypeFolder:
					queue = append(queue, folder{id: f.Id, path: path.Join(current.path, f.Name)})
				case isSourceFile(f):
					files = append(files, driven.FileInfo{
						ID:       f.Id,
						Name:     f.Name,
						Path:     current.path,
						MIMEType: f.MimeType,
					})
				}
			}

			pageToken = page.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	logger.Debug("drive: found %d source files under %s", len(files), folderID)
	return files, nil
}

// isSourceFile reports whether a Drive file is a processable source
// document.
func isSourceFile(f *drive.File) bool {
	if strings.HasPrefix(f.Name, "~$") {
		return false
	}
	if f.MimeType == MimeTypeGoogleDoc {
		return true
	}
	lower := strings.ToLower(f.Name)
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FetchText returns the plain-text content of a source file. Native
// Google Docs are exported as text; .docx archives are unpacked locally;
// .txt is read as is. PDF content is not extractable here and fails
// with domain.ErrUnsupportedFormat.
func (s *Store) FetchText(ctx context.Context, file driven.FileInfo) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if file.MIMEType == MimeTypeGoogleDoc {
		return s.export(ctx, file.ID, ExportMimeText)
	}

	lower := strings.ToLower(file.Name)
	switch {
	case strings.HasSuffix(lower, ".docx"):
		data, err := s.download(ctx, file.ID)
		if err != nil {
			return "", err
		}
		text, err := ExtractDocxText(data)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", file.Name, err)
		}
		return text, nil
	case strings.HasSuffix(lower, ".txt"):
		data, err := s.download(ctx, file.ID)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, file.Name)
	}
}

func (s *Store) export(ctx context.Context, fileID, mimeType string) (string, error) {
	resp, err := s.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return "", s.wrap(fmt.Errorf("export file: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(data), nil
}

func (s *Store) download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, s.wrap(fmt.Errorf("download file: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	return data, nil
}

// EnsureFolder finds or creates a named subfolder of parentID.
func (s *Store) EnsureFolder(ctx context.Context, parentID, name string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	query := fmt.Sprintf("'%s' in parents and name = '%s' and mimeType = '%s' and trashed = false",
		parentID, escapeQuery(name), MimeTypeFolder)
	page, err := s.svc.Files.List().Q(query).Fields("files(id)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", s.wrap(fmt.Errorf("find folder %s: %w", name, err))
	}
	if len(page.Files) > 0 {
		return page.Files[0].Id, nil
	}

	created, err := s.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", s.wrap(fmt.Errorf("create folder %s: %w", name, err))
	}
	logger.Debug("drive: created folder %s (%s)", name, created.Id)
	return created.Id, nil
}

// escapeQuery escapes single quotes for Drive query strings.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// Upload writes content as filename into folderID.
func (s *Store) Upload(ctx context.Context, content []byte, folderID, filename string) (driven.FileInfo, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return driven.FileInfo{}, err
	}

	created, err := s.svc.Files.Create(&drive.File{
		Name:     filename,
		MimeType: MimeTypeDocx,
		Parents:  []string{folderID},
	}).Media(bytes.NewReader(content), googleapi.ContentType(MimeTypeDocx)).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return driven.FileInfo{}, s.wrap(fmt.Errorf("upload %s: %w", filename, err))
	}

	logger.Info("drive: uploaded %s (%s, %d bytes)", filename, created.Id, len(content))
	return driven.FileInfo{ID: created.Id, Name: created.Name, MIMEType: MimeTypeDocx}, nil
}

// Ping verifies the credential by fetching account information.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.svc.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return s.wrap(fmt.Errorf("drive probe: %w", err))
	}
	return nil
}

// wrap maps Google API errors onto the domain taxonomy where the
// pipeline cares about the distinction.
func (s *Store) wrap(err error) error {
	wrapped := google.WrapError(err)
	switch {
	case google.IsUnauthorized(wrapped), google.IsForbidden(wrapped):
		return fmt.Errorf("%w: %v", domain.ErrAuthInvalid, wrapped)
	case google.IsRateLimited(wrapped):
		s.limiter.RecordRateLimitError(0)
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, wrapped)
	default:
		return wrapped
	}
}
