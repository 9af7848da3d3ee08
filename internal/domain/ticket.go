package domain

import "time"

// TicketStatus enumerates lifecycle states for incident tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// MessageType enumerates the supported inbound message kinds.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeVideo    MessageType = "video"
	MessageTypeDocument MessageType = "document"
)

// IsMedia reports whether the message kind carries a binary attachment.
func (t MessageType) IsMedia() bool {
	return t == MessageTypeImage || t == MessageTypeAudio || t == MessageTypeVideo || t == MessageTypeDocument
}

// Message is the tagged union over inbound message kinds. Only the
// fields relevant to the tag are populated: text messages carry Text,
// media messages carry ProviderMediaID/MimeType plus MediaURL once the
// attachment has been re-hosted.
type Message struct {
	Type            MessageType `json:"type"`
	Text            string      `json:"text,omitempty"`
	ProviderMediaID *string     `json:"provider_media_id,omitempty"`
	MimeType        *string     `json:"mime_type,omitempty"`
	MediaURL        *string     `json:"media_url,omitempty"`
}

// Resolution captures the evidence recorded when a ticket enters RESOLVED.
type Resolution struct {
	PhotoURL   string    `json:"photo_url"`
	Notes      string    `json:"notes,omitempty"`
	ResolvedBy string    `json:"resolved_by"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// Ticket is the system of record for one reported incident.
type Ticket struct {
	ID                  string
	TicketID            string
	ProviderMessageID   string
	ReporterHash        string
	Message             Message
	SiteID              string
	SubSiteID           *string
	Status              TicketStatus
	PossibleDuplicateOf *string
	DuplicateScore      *float64
	AIAnalysis          *AIAnalysis
	Resolution          *Resolution
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
