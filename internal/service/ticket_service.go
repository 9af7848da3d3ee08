package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/access"
	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/events"
	"github.com/safetydesk/incident-service/internal/repository"
	apperrors "github.com/safetydesk/incident-service/pkg/util"
)

// ResolutionUploader stores resolution evidence photos.
type ResolutionUploader interface {
	UploadResolutionPhoto(ctx context.Context, data []byte, mimeType string) (string, error)
}

// TicketService coordinates administrative ticket workflows: scoped
// listing and fetching, the status state machine, and deletion.
type TicketService struct {
	tickets    repository.TicketRepository
	uploader   ResolutionUploader
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Uploader   ResolutionUploader
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// StatusUpdateInput describes an administrative status mutation.
type StatusUpdateInput struct {
	Status          domain.TicketStatus
	ResolutionPhoto []byte
	PhotoMimeType   string
	ResolutionNotes string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		uploader:   deps.Uploader,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// ListTickets returns tickets within the admin's scope.
func (s *TicketService) ListTickets(ctx context.Context, admin *domain.Admin, statuses []domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	filter, allowed := access.ScopeFilter(admin)
	if !allowed {
		return nil, apperrors.NewForbidden("no sites assigned to this account")
	}
	filter.Statuses = statuses
	filter.Limit = limit
	filter.Offset = offset
	return s.tickets.ListWithFilter(ctx, filter)
}

// GetTicket fetches a single ticket, failing closed on scope.
func (s *TicketService) GetTicket(ctx context.Context, admin *domain.Admin, ticketID string) (*domain.Ticket, error) {
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
	return ticket, nil
}

// UpdateStatus applies one state-machine transition. Access control
// runs before the transition check; entering RESOLVED requires a photo
// whose upload must succeed before any state is written.
func (s *TicketService) UpdateStatus(ctx context.Context, admin *domain.Admin, ticketID string, input StatusUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, admin, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanMutate(admin, ticket) {
		return nil, apperrors.NewForbidden("ticket outside your access scope")
	}
	if input.Status == domain.TicketStatusClosed && !access.CanClose(admin, ticket) {
		return nil, apperrors.NewForbidden("closing tickets requires owner or site admin role")
	}
	if !isValidTransition(ticket.Status, input.Status) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("invalid transition from %s to %s", ticket.Status, input.Status), nil)
	}

	var resolution *domain.Resolution
	if input.Status == domain.TicketStatusResolved {
		if len(input.ResolutionPhoto) == 0 {
			return nil, apperrors.NewValidationError("a resolution photo is required to resolve a ticket", nil)
		}
		photoURL, err := s.uploader.UploadResolutionPhoto(ctx, input.ResolutionPhoto, input.PhotoMimeType)
		if err != nil {
			// upload failure aborts the whole transition; status unchanged
			s.logger.Error("resolution photo upload failed", zap.String("ticket_id", ticketID), zap.Error(err))
			return nil, apperrors.NewDomainError("UPLOAD_FAILED", "could not store resolution photo", 502, nil)
		}
		resolution = &domain.Resolution{
			PhotoURL:   photoURL,
			Notes:      strings.TrimSpace(input.ResolutionNotes),
			ResolvedBy: admin.ID,
			ResolvedAt: time.Now().UTC(),
		}
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, input.Status, resolution); err != nil {
		return nil, err
	}
	ticket.Status = input.Status
	if resolution != nil {
		ticket.Resolution = resolution
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.TicketID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: input.Status,
			ChangedBy: admin.ID,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket; reports cascade in the database.
func (s *TicketService) DeleteTicket(ctx context.Context, admin *domain.Admin, ticketID string) error {
	if !access.CanDelete(admin) {
		return apperrors.NewForbidden("deleting tickets requires owner role")
	}
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return err
	}
	return s.tickets.Delete(ctx, ticket.ID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// GenerateTicketKey builds the human-readable business key.
func GenerateTicketKey() string {
	return "INC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
