package ai

import (
	"context"
	"errors"

	"github.com/safetydesk/incident-service/internal/domain"
)

// ErrUnavailable signals that a provider could not produce a usable
// result (timeout, provider error, malformed output, disabled by
// configuration). The chain moves on to the next provider; exhaustion
// is a normal outcome, not an error.
var ErrUnavailable = errors.New("analysis unavailable")

// Input is the shared request shape for every provider.
type Input struct {
	ImageURL    string
	Text        string
	SiteType    string
	ContentType string
}

// Provider is one strategy in the ordered fallback chain.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, input Input) (*domain.AIAnalysis, error)
}
