package sitecontext

import (
	"context"
	"regexp"
	"strings"

	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/repository"
)

// RejectReason classifies why a message failed site-context validation.
type RejectReason string

const (
	RejectMissingSite    RejectReason = "missing_site"
	RejectUnknownSite    RejectReason = "unknown_site"
	RejectUnknownSubSite RejectReason = "unknown_subsite"
	RejectIssueTooShort  RejectReason = "issue_too_short"
)

// Rejection is a content-validation failure; no ticket is created and a
// guidance reply keyed by Reason is sent to the reporter.
type Rejection struct {
	Reason RejectReason
	SiteID string
}

func (r *Rejection) Error() string {
	return "site context rejected: " + string(r.Reason)
}

// Context is a successfully resolved and validated site scope plus the
// cleaned message body.
type Context struct {
	SiteID      string
	SubSiteID   *string
	SiteType    string
	CleanedText string
	Placeholder bool
}

var (
	sitePattern = regexp.MustCompile(`(?i)SITE:([A-Za-z0-9_-]+)`)
	subPattern  = regexp.MustCompile(`(?i)SUB:([A-Za-z0-9_-]+)`)
)

// Resolver extracts SITE:/SUB: tokens and validates them against the
// active-site registry.
type Resolver struct {
	sites            repository.SiteRepository
	minIssueLength   int
	imagePlaceholder string
}

// NewResolver constructs the resolver.
func NewResolver(sites repository.SiteRepository, minIssueLength int, imagePlaceholder string) *Resolver {
	if minIssueLength <= 0 {
		minIssueLength = 10
	}
	if imagePlaceholder == "" {
		imagePlaceholder = "Image report (no caption provided)"
	}
	return &Resolver{sites: sites, minIssueLength: minIssueLength, imagePlaceholder: imagePlaceholder}
}

// Extract pulls the SITE:/SUB: tokens out of raw text without touching
// the registry. Tokens are normalized to uppercase and the returned
// body has the tokens and one leading separator removed.
func Extract(raw string) (siteID, subSiteID, cleaned string) {
	if m := sitePattern.FindStringSubmatch(raw); m != nil {
		siteID = strings.ToUpper(m[1])
	}
	if m := subPattern.FindStringSubmatch(raw); m != nil {
		subSiteID = strings.ToUpper(m[1])
	}
	cleaned = sitePattern.ReplaceAllString(raw, "")
	cleaned = subPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimLeft(cleaned, "|, \t\n")
	cleaned = strings.TrimSpace(cleaned)
	return siteID, subSiteID, cleaned
}

// Resolve validates the extracted tokens and enforces the minimum
// content length. Image messages with no meaningful caption pass with
// the configured placeholder; every other kind rejects.
func (r *Resolver) Resolve(ctx context.Context, raw string, msgType domain.MessageType) (*Context, *Rejection, error) {
	siteID, subSiteID, cleaned := Extract(raw)

	if siteID == "" {
		return nil, &Rejection{Reason: RejectMissingSite}, nil
	}

	site, err := r.sites.GetSite(ctx, siteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, &Rejection{Reason: RejectUnknownSite, SiteID: siteID}, nil
		}
		return nil, nil, err
	}
	if !site.IsActive {
		return nil, &Rejection{Reason: RejectUnknownSite, SiteID: siteID}, nil
	}

	resolved := &Context{SiteID: site.SiteID, SiteType: site.SiteType}
	if subSiteID != "" {
		sub, err := r.sites.GetSubSite(ctx, siteID, subSiteID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, &Rejection{Reason: RejectUnknownSubSite, SiteID: siteID}, nil
			}
			return nil, nil, err
		}
		if !sub.IsActive {
			return nil, &Rejection{Reason: RejectUnknownSubSite, SiteID: siteID}, nil
		}
		resolved.SubSiteID = &sub.SubSiteID
	}

	if len(cleaned) < r.minIssueLength {
		if msgType == domain.MessageTypeImage {
			resolved.CleanedText = r.imagePlaceholder
			resolved.Placeholder = true
			return resolved, nil, nil
		}
		return nil, &Rejection{Reason: RejectIssueTooShort, SiteID: siteID}, nil
	}

	resolved.CleanedText = cleaned
	return resolved, nil, nil
}
