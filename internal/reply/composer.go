package reply

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/sitecontext"
)

// Composer renders every user-facing message the service sends. All
// reporter-visible text lives here; nothing else formats replies.
type Composer struct{}

// NewComposer constructs the composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Confirmation acknowledges a newly created ticket.
func (c *Composer) Confirmation(ticket *domain.Ticket) string {
	location := ticket.SiteID
	if ticket.SubSiteID != nil {
		location += " / " + *ticket.SubSiteID
	}
	return fmt.Sprintf(
		"✅ Your safety report has been registered.\n\nTicket: %s\nLocation: %s\n\nSend \"status %s\" anytime to check progress.",
		ticket.TicketID, location, ticket.TicketID)
}

// DuplicateNotice acknowledges a ticket that looks like a repeat report.
func (c *Composer) DuplicateNotice(ticket *domain.Ticket, rootTicketID string) string {
	return fmt.Sprintf(
		"✅ Your report has been registered as ticket %s.\n\nIt looks similar to your recent report %s, so the team will review them together.",
		ticket.TicketID, rootTicketID)
}

// Rejection explains why no ticket was created and how to fix it.
func (c *Composer) Rejection(reason sitecontext.RejectReason) string {
	switch reason {
	case sitecontext.RejectMissingSite:
		return "⚠️ We could not register your report: no site code was found.\n\nPlease scan the QR code at your location, or start your message with SITE:<code>."
	case sitecontext.RejectUnknownSite:
		return "⚠️ We could not register your report: the site code is not recognized or is no longer active.\n\nPlease scan the QR code at your location and try again."
	case sitecontext.RejectUnknownSubSite:
		return "⚠️ We could not register your report: the area code is not recognized for this site.\n\nPlease scan the QR code at your location and try again."
	case sitecontext.RejectIssueTooShort:
		return "⚠️ We could not register your report: please describe the safety issue in a few more words and send it again."
	default:
		return "⚠️ We could not register your report. Please check your message and try again."
	}
}

// AIWarning is the advisory follow-up sent when the analysis flags a
// life-saving rule violation.
func (c *Composer) AIWarning(ticket *domain.Ticket, analysis *domain.AIAnalysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 Safety advisory for ticket %s\n\n", ticket.TicketID))
	if analysis.RuleName != nil && *analysis.RuleName != "" {
		b.WriteString(fmt.Sprintf("Rule at risk: %s\n", *analysis.RuleName))
	}
	b.WriteString(fmt.Sprintf("Risk level: %s\n\n%s", analysis.RiskLevel, analysis.WhyThisIsDangerous))
	if len(analysis.MentorPrecautions) > 0 {
		b.WriteString("\n\nPrecautions:")
		for _, p := range analysis.MentorPrecautions {
			b.WriteString("\n• " + p)
		}
	}
	return b.String()
}

// StatusReply answers a "status <ticketId>" command.
func (c *Composer) StatusReply(ticket *domain.Ticket) string {
	return fmt.Sprintf("Ticket %s\nStatus: %s\nLast update: %s",
		ticket.TicketID, ticket.Status, ticket.UpdatedAt.Format(time.RFC1123))
}

// StatusNotFound answers a status command for an unknown ticket id.
func (c *Composer) StatusNotFound(ticketID string) string {
	return fmt.Sprintf("We could not find a ticket with id %s. Please check the id and try again.", ticketID)
}

// TemporaryIssue is the generic reply for unexpected failures. It never
// exposes internal detail.
func (c *Composer) TemporaryIssue() string {
	return "⚠️ We hit a temporary issue while registering your report. Please try again in a few minutes."
}

// DeepLinkPayload renders the QR text payload for a site or sub-site.
func DeepLinkPayload(siteID string, subSiteID string) string {
	payload := "SITE:" + strings.ToUpper(siteID)
	if subSiteID != "" {
		payload += "|SUB:" + strings.ToUpper(subSiteID)
	}
	return payload
}

// DeepLink wraps the payload in a wa.me link that pre-fills the
// reporter's outgoing message.
func DeepLink(phoneNumber, siteID, subSiteID string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		phoneNumber, url.QueryEscape(DeepLinkPayload(siteID, subSiteID)))
}
