package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/observability"
)

// Analyzer runs the ordered provider chain until one returns a usable
// result. A fully failed chain yields (nil, nil): absence of analysis
// is an expected terminal state.
type Analyzer struct {
	providers []Provider
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAnalyzer constructs the analyzer over an ordered provider list.
func NewAnalyzer(providers []Provider, metrics *observability.Metrics, logger *zap.Logger) *Analyzer {
	return &Analyzer{providers: providers, metrics: metrics, logger: logger}
}

// Analyze invokes providers in order. Secondary providers that cannot
// serve the input (e.g. text-only provider, image-only report) simply
// return ErrUnavailable and the chain continues.
func (a *Analyzer) Analyze(ctx context.Context, input Input) (*domain.AIAnalysis, error) {
	for _, provider := range a.providers {
		analysis, err := provider.Analyze(ctx, input)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				a.metrics.RecordAnalysis(provider.Name(), "unavailable")
				a.logger.Info("analysis provider unavailable", zap.String("provider", provider.Name()))
				continue
			}
			a.metrics.RecordAnalysis(provider.Name(), "error")
			a.logger.Warn("analysis provider error", zap.String("provider", provider.Name()), zap.Error(err))
			continue
		}
		if analysis == nil {
			continue
		}
		analysis.Provider = provider.Name()
		analysis.AnalyzedAt = time.Now().UTC()
		a.metrics.RecordAnalysis(provider.Name(), "ok")
		return analysis, nil
	}
	a.metrics.RecordAnalysis("none", "exhausted")
	return nil, nil
}
