package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{"life_saving_rule_violated":true,"rule_name":"Work at Height","risk_level":"High","observation_summary":"worker on roof","why_this_is_dangerous":"fall risk","mentor_precautions":["use harness"],"confidence":0.9,"text_image_aligned":true,"alignment_reason":"matches","content_type":"image+text"}`

func TestParseAnalysis(t *testing.T) {
	t.Run("parses bare json", func(t *testing.T) {
		analysis, err := ParseAnalysis(sampleJSON)
		require.NoError(t, err)
		assert.True(t, analysis.LifeSavingRuleViolated)
		require.NotNil(t, analysis.RuleName)
		assert.Equal(t, "Work at Height", *analysis.RuleName)
		assert.Equal(t, 0.9, analysis.Confidence)
	})

	t.Run("parses fenced json", func(t *testing.T) {
		analysis, err := ParseAnalysis("```json\n" + sampleJSON + "\n```")
		require.NoError(t, err)
		assert.True(t, analysis.LifeSavingRuleViolated)
	})

	t.Run("parses json buried in prose", func(t *testing.T) {
		analysis, err := ParseAnalysis("Here is the assessment you asked for:\n" + sampleJSON + "\nLet me know if you need anything else.")
		require.NoError(t, err)
		assert.Equal(t, "worker on roof", analysis.ObservationSummary)
	})

	t.Run("handles braces inside string values", func(t *testing.T) {
		raw := `noise {"life_saving_rule_violated":false,"rule_name":null,"risk_level":"Low","observation_summary":"text with } brace","why_this_is_dangerous":"","mentor_precautions":[],"confidence":0.5,"text_image_aligned":false,"alignment_reason":"","content_type":"text-only"} trailing`
		analysis, err := ParseAnalysis(raw)
		require.NoError(t, err)
		assert.Equal(t, "text with } brace", analysis.ObservationSummary)
	})

	t.Run("rejects output without json", func(t *testing.T) {
		_, err := ParseAnalysis("I cannot assess this report.")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := ParseAnalysis(`{"risk_level": }`)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}
