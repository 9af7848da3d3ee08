package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/observability"
)

type stubProvider struct {
	name   string
	result *domain.AIAnalysis
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Analyze(context.Context, Input) (*domain.AIAnalysis, error) {
	s.calls++
	return s.result, s.err
}

func TestAnalyzer(t *testing.T) {
	ctx := context.Background()
	input := Input{Text: "oil leakage near machine", SiteType: "factory", ContentType: "text-only"}

	t.Run("uses the first provider when it succeeds", func(t *testing.T) {
		first := &stubProvider{name: "primary", result: &domain.AIAnalysis{RiskLevel: domain.RiskLevelHigh}}
		second := &stubProvider{name: "secondary"}
		analyzer := NewAnalyzer([]Provider{first, second}, observability.NewMetrics(), zap.NewNop())

		analysis, err := analyzer.Analyze(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, analysis)
		assert.Equal(t, "primary", analysis.Provider)
		assert.False(t, analysis.AnalyzedAt.IsZero())
		assert.Zero(t, second.calls)
	})

	t.Run("falls back when the first is unavailable", func(t *testing.T) {
		first := &stubProvider{name: "primary", err: ErrUnavailable}
		second := &stubProvider{name: "secondary", result: &domain.AIAnalysis{RiskLevel: domain.RiskLevelLow}}
		analyzer := NewAnalyzer([]Provider{first, second}, observability.NewMetrics(), zap.NewNop())

		analysis, err := analyzer.Analyze(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, analysis)
		assert.Equal(t, "secondary", analysis.Provider)
	})

	t.Run("falls back on unexpected provider errors too", func(t *testing.T) {
		first := &stubProvider{name: "primary", err: errors.New("boom")}
		second := &stubProvider{name: "secondary", result: &domain.AIAnalysis{}}
		analyzer := NewAnalyzer([]Provider{first, second}, observability.NewMetrics(), zap.NewNop())

		analysis, err := analyzer.Analyze(ctx, input)
		require.NoError(t, err)
		assert.NotNil(t, analysis)
	})

	t.Run("exhausted chain yields nil without error", func(t *testing.T) {
		first := &stubProvider{name: "primary", err: ErrUnavailable}
		second := &stubProvider{name: "secondary", err: ErrUnavailable}
		analyzer := NewAnalyzer([]Provider{first, second}, observability.NewMetrics(), zap.NewNop())

		analysis, err := analyzer.Analyze(ctx, input)
		require.NoError(t, err)
		assert.Nil(t, analysis)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
	})
}
