package domain

import "time"

// ReportStatus enumerates review states for admin-raised flags.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// TicketReport is an admin-raised flag on a ticket. Its lifecycle is
// independent of the ticket it references; deleting the ticket cascades
// to its reports, deleting a report never touches the ticket.
// TicketID is the referenced tickets row id; TicketKey is that
// ticket's INC- business key, the form admins see everywhere else.
type TicketReport struct {
	ID        string
	TicketID  string
	TicketKey string
	RaisedBy  string
	Reason    string
	Status    ReportStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
