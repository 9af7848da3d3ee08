package domain

import "time"

// RiskLevel grades the severity of an observed hazard.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// AIAnalysis is the structured risk assessment attached to a ticket
// after creation. Absence is a valid terminal state.
type AIAnalysis struct {
	LifeSavingRuleViolated bool      `json:"life_saving_rule_violated"`
	RuleName               *string   `json:"rule_name"`
	RiskLevel              RiskLevel `json:"risk_level"`
	ObservationSummary     string    `json:"observation_summary"`
	WhyThisIsDangerous     string    `json:"why_this_is_dangerous"`
	MentorPrecautions      []string  `json:"mentor_precautions"`
	Confidence             float64   `json:"confidence"`
	TextImageAligned       bool      `json:"text_image_aligned"`
	AlignmentReason        string    `json:"alignment_reason"`
	ContentType            string    `json:"content_type"`
	Provider               string    `json:"provider,omitempty"`
	AnalyzedAt             time.Time `json:"analyzed_at,omitempty"`
}
