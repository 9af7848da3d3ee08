package service

import (
	"context"
	"strings"

	"github.com/safetydesk/incident-service/internal/access"
	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/repository"
	apperrors "github.com/safetydesk/incident-service/pkg/util"
)

// ReportService manages admin-raised flags on tickets. Report
// lifecycles are independent of the tickets they reference.
type ReportService struct {
	reports repository.ReportRepository
	tickets repository.TicketRepository
}

// NewReportService constructs the service.
func NewReportService(reports repository.ReportRepository, tickets repository.TicketRepository) *ReportService {
	return &ReportService{reports: reports, tickets: tickets}
}

// RaiseReport flags a ticket the admin can see.
func (s *ReportService) RaiseReport(ctx context.Context, admin *domain.Admin, ticketID, reason string) (*domain.TicketReport, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	if !access.CanView(admin, ticket) {
		return nil, apperrors.NewForbidden("ticket outside your access scope")
	}

	report := &domain.TicketReport{
		TicketID:  ticket.ID,
		TicketKey: ticket.TicketID,
		RaisedBy:  admin.ID,
		Reason:    reason,
		Status:    domain.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns reports for review, restricted to tickets the
// admin can see. The same fail-closed scope as ticket listing applies.
func (s *ReportService) ListReports(ctx context.Context, admin *domain.Admin, limit, offset int) ([]domain.TicketReport, error) {
	filter, ok := access.ScopeFilter(admin)
	if !ok {
		return nil, apperrors.NewForbidden("no accessible sites")
	}
	filter.Limit = limit
	filter.Offset = offset
	return s.reports.List(ctx, filter)
}

// ListTicketReports returns the flags raised on one ticket.
func (s *ReportService) ListTicketReports(ctx context.Context, admin *domain.Admin, ticketID string) ([]domain.TicketReport, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	if !access.CanView(admin, ticket) {
		return nil, apperrors.NewForbidden("ticket outside your access scope")
	}
	return s.reports.ListByTicket(ctx, ticket.ID)
}

// UpdateReportStatus moves a report through its review states. Review
// is gated by visibility of the referenced ticket.
func (s *ReportService) UpdateReportStatus(ctx context.Context, admin *domain.Admin, reportID string, status domain.ReportStatus) (*domain.TicketReport, error) {
	switch status {
	case domain.ReportStatusPending, domain.ReportStatusReviewed, domain.ReportStatusResolved, domain.ReportStatusDismissed:
	default:
		return nil, apperrors.NewValidationError("unknown report status", map[string]any{"status": status})
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("report", map[string]any{"id": reportID})
		}
		return nil, err
	}
	ticket, err := s.tickets.GetByTicketID(ctx, report.TicketKey)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": report.TicketKey})
		}
		return nil, err
	}
	if !access.CanView(admin, ticket) {
		return nil, apperrors.NewForbidden("ticket outside your access scope")
	}
	if err := s.reports.UpdateStatus(ctx, report.ID, status); err != nil {
		return nil, err
	}
	report.Status = status
	return report, nil
}

// DeleteReport removes a report. The referenced ticket is untouched.
func (s *ReportService) DeleteReport(ctx context.Context, admin *domain.Admin, reportID string) error {
	if !access.CanDelete(admin) {
		return apperrors.NewForbidden("deleting reports requires owner role")
	}
	if err := s.reports.Delete(ctx, reportID); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("report", map[string]any{"id": reportID})
		}
		return err
	}
	return nil
}
