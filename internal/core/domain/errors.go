package domain

import "errors"

// Domain errors represent pipeline failures. They are matched with
// errors.Is across package boundaries; adapters wrap them with context.
var (
	// ErrEmptyDocument indicates a source document had no readable text.
	ErrEmptyDocument = errors.New("document text is empty")

	// ErrUnsupportedFormat indicates a source file format the extractor
	// cannot read.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrGenerationFailed indicates the generation service could not
	// produce usable content after all retries were exhausted.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrRateLimited indicates the generation service signalled a quota
	// or rate limit. Transient: retried with backoff.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a transient service failure
	// (timeout or 5xx-equivalent). Retried with backoff.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrPermanentRejection indicates the service rejected the request
	// in a way retrying cannot fix (invalid prompt, blocked content).
	// Escalated immediately without retry.
	ErrPermanentRejection = errors.New("request permanently rejected")

	// ErrAssemblyFailed indicates the document writer could not
	// serialize the assembled content. Non-recoverable for the document.
	ErrAssemblyFailed = errors.New("document assembly failed")

	// ErrMissingConfig indicates required run configuration is absent.
	// Fatal at startup, before any document is processed.
	ErrMissingConfig = errors.New("missing required configuration")

	// ErrAuthInvalid indicates the storage credential was rejected.
	// Fatal at startup, surfaced by the connectivity probe.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// IsTransient reports whether err is a failure worth retrying:
// a rate/quota signal or a temporary service outage.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable)
}
