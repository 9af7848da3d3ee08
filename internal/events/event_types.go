package events

import (
	"time"

	"github.com/safetydesk/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries what the analysis side-channel needs.
// ReplyTo is the raw platform recipient; it rides the in-process event
// only and is never persisted.
type TicketCreatedPayload struct {
	TicketPK    string  `json:"ticket_pk"`
	ReplyTo     string  `json:"-"`
	Text        string  `json:"-"`
	ImageURL    string  `json:"-"`
	SiteType    string  `json:"site_type"`
	ContentType string  `json:"content_type"`
	SiteID      string  `json:"site_id"`
	SubSiteID   *string `json:"sub_site_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	ChangedBy string              `json:"changed_by"`
}
