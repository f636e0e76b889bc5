// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"time"
)

// LLMService is a single-call client for the generative-language service.
// It carries no retry or rate-limit behaviour of its own; the generation
// client in core/services owns both.
type LLMService interface {
	// Generate produces text completion from a prompt. A rate/quota
	// signal, a transient outage and a permanent rejection surface as
	// domain.ErrRateLimited, domain.ErrServiceUnavailable and
	// domain.ErrPermanentRejection respectively, wrapped with context.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the default model identifier.
	ModelName() string

	// Ping validates the service is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures a single generation call.
type GenerateOptions struct {
	// Model overrides the service's default model when non-empty.
	// Used by the generation client to switch to the fallback model.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// TopP is the nucleus sampling parameter. Zero means service default.
	TopP float64

	// Timeout bounds the call. Zero means the client's default.
	Timeout time.Duration
}

// Limiter gates outbound generation calls to a per-minute budget.
// Modelled as an explicit, injectable component so the same window can
// be shared deliberately across clients and reset between test runs.
type Limiter interface {
	// Wait blocks until a call can be made without exceeding the cap.
	// Calls beyond the cap are delayed, never rejected.
	Wait(ctx context.Context) error

	// RecordRateLimitError notes a quota rejection from the service and
	// sets a backoff period before the next admission.
	RecordRateLimitError(retryAfterSeconds int)
}
