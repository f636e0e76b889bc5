// Package google provides shared infrastructure for Google API access.
//
// This package contains common utilities used by the Drive and Sheets
// adapters including:
//   - Service factories for creating authenticated API clients
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
// The storage adapters use this package to create authenticated API
// clients from a credentials file:
//
//	svc, err := google.NewDriveService(ctx, cfg.CredentialsFile)
//
// # Authentication
//
// Authentication uses a pre-established credential file, typically a
// service account key. Credential problems surface when the client is
// first used, which the pipeline treats as fatal at startup.
package google
