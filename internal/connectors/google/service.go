package google

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewDriveService creates a Google Drive API service authenticated with
// the given credentials file (service account or authorized user JSON).
func NewDriveService(ctx context.Context, credentialsFile string) (*drive.Service, error) {
	if err := checkCredentialsFile(credentialsFile); err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}

// NewSheetsService creates a Google Sheets API service authenticated
// with the given credentials file.
func NewSheetsService(ctx context.Context, credentialsFile string) (*sheets.Service, error) {
	if err := checkCredentialsFile(credentialsFile); err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func checkCredentialsFile(path string) error {
	if path == "" {
		return fmt.Errorf("google: credentials file is required")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("google: credentials file %s: %w", path, err)
	}
	return nil
}
