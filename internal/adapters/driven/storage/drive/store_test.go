package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wmc-labs/ditele-cli/internal/connectors/google"
)

func TestWithRateLimitOverridesDefault(t *testing.T) {
	s := NewStore(nil)
	def := s.limiter

	s.WithRateLimit(google.RateLimitConfig{RequestsPerSecond: 100, BurstSize: 5})

	assert.NotSame(t, def, s.limiter)
	assert.True(t, s.limiter.Allow())
}

func TestWithRateLimitZeroKeepsDefault(t *testing.T) {
	s := NewStore(nil)
	def := s.limiter

	s.WithRateLimit(google.RateLimitConfig{})

	assert.Same(t, def, s.limiter)
}
