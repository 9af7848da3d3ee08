package reply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/sitecontext"
)

func TestConfirmation(t *testing.T) {
	composer := NewComposer()
	sub := "GITA1"
	ticket := &domain.Ticket{TicketID: "INC-AB12CD34EF", SiteID: "GITA", SubSiteID: &sub}

	msg := composer.Confirmation(ticket)
	assert.Contains(t, msg, "INC-AB12CD34EF")
	assert.Contains(t, msg, "GITA / GITA1")
	assert.Contains(t, msg, `status INC-AB12CD34EF`)
}

func TestDuplicateNotice(t *testing.T) {
	composer := NewComposer()
	ticket := &domain.Ticket{TicketID: "INC-NEW", SiteID: "GITA"}

	msg := composer.DuplicateNotice(ticket, "INC-ROOT")
	assert.Contains(t, msg, "INC-NEW")
	assert.Contains(t, msg, "INC-ROOT")
}

func TestRejection(t *testing.T) {
	composer := NewComposer()
	reasons := []sitecontext.RejectReason{
		sitecontext.RejectMissingSite,
		sitecontext.RejectUnknownSite,
		sitecontext.RejectUnknownSubSite,
		sitecontext.RejectIssueTooShort,
	}
	seen := map[string]bool{}
	for _, reason := range reasons {
		msg := composer.Rejection(reason)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "reason %s should have its own wording", reason)
		seen[msg] = true
	}
}

func TestAIWarning(t *testing.T) {
	composer := NewComposer()
	rule := "Work at Height"
	ticket := &domain.Ticket{TicketID: "INC-XYZ"}
	analysis := &domain.AIAnalysis{
		LifeSavingRuleViolated: true,
		RuleName:               &rule,
		RiskLevel:              domain.RiskLevelHigh,
		WhyThisIsDangerous:     "A fall from this height is likely fatal.",
		MentorPrecautions:      []string{"Use a harness", "Cordon off the area"},
	}

	msg := composer.AIWarning(ticket, analysis)
	assert.Contains(t, msg, "INC-XYZ")
	assert.Contains(t, msg, "Work at Height")
	assert.Contains(t, msg, "High")
	assert.Contains(t, msg, "Use a harness")
	assert.Contains(t, msg, "Cordon off the area")
}

func TestDeepLinkPayload(t *testing.T) {
	assert.Equal(t, "SITE:GITA", DeepLinkPayload("gita", ""))
	assert.Equal(t, "SITE:GITA|SUB:GITA1", DeepLinkPayload("GITA", "gita1"))
}

func TestDeepLink(t *testing.T) {
	link := DeepLink("15551234567", "GITA", "GITA1")
	assert.True(t, strings.HasPrefix(link, "https://wa.me/15551234567?text="))
	assert.Contains(t, link, "SITE%3AGITA%7CSUB%3AGITA1")
}
