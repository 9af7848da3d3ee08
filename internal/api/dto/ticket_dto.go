package dto

import (
	"time"

	"github.com/safetydesk/incident-service/internal/domain"
)

// TicketSummary is the listing projection.
type TicketSummary struct {
	TicketID            string              `json:"ticket_id"`
	SiteID              string              `json:"site_id"`
	SubSiteID           *string             `json:"sub_site_id,omitempty"`
	MessageType         domain.MessageType  `json:"message_type"`
	Status              domain.TicketStatus `json:"status"`
	PossibleDuplicateOf *string             `json:"possible_duplicate_of,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// TicketDetailResponse is the single-item projection.
type TicketDetailResponse struct {
	TicketID            string              `json:"ticket_id"`
	ReporterHash        string              `json:"reporter_hash"`
	Message             domain.Message      `json:"message"`
	SiteID              string              `json:"site_id"`
	SubSiteID           *string             `json:"sub_site_id,omitempty"`
	Status              domain.TicketStatus `json:"status"`
	PossibleDuplicateOf *string             `json:"possible_duplicate_of,omitempty"`
	DuplicateScore      *float64            `json:"duplicate_score,omitempty"`
	AIAnalysis          *domain.AIAnalysis  `json:"ai_analysis,omitempty"`
	Resolution          *domain.Resolution  `json:"resolution,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// UpdateStatusRequest mutates ticket status. ResolutionPhoto is
// base64-encoded image data, mandatory when status is RESOLVED.
type UpdateStatusRequest struct {
	Status          string `json:"status"`
	ResolutionPhoto string `json:"resolution_photo,omitempty"`
	PhotoMimeType   string `json:"photo_mime_type,omitempty"`
	ResolutionNotes string `json:"resolution_notes,omitempty"`
}

// CreateReportRequest flags a ticket for review.
type CreateReportRequest struct {
	Reason string `json:"reason"`
}

// UpdateReportRequest moves a report through review states.
type UpdateReportRequest struct {
	Status string `json:"status"`
}

// ReportResponse is the report projection.
type ReportResponse struct {
	ID        string              `json:"id"`
	TicketID  string              `json:"ticket_id"`
	RaisedBy  string              `json:"raised_by"`
	Reason    string              `json:"reason"`
	Status    domain.ReportStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
