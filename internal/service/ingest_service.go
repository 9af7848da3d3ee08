package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/dedup"
	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/events"
	"github.com/safetydesk/incident-service/internal/identity"
	"github.com/safetydesk/incident-service/internal/observability"
	"github.com/safetydesk/incident-service/internal/reply"
	"github.com/safetydesk/incident-service/internal/repository"
	"github.com/safetydesk/incident-service/internal/sitecontext"
	"github.com/safetydesk/incident-service/internal/whatsapp"
)

// MediaRehoster re-hosts platform attachments on durable storage.
type MediaRehoster interface {
	Rehost(ctx context.Context, providerMediaID, mimeType string) (string, error)
}

// ReplySender delivers outbound platform messages.
type ReplySender interface {
	SendText(ctx context.Context, to, body string) error
}

// IngestService turns one inbound delivery into at most one ticket.
// Each delivery is processed independently; correctness under racing
// redeliveries rests on the database unique constraints, not on any
// in-process state.
type IngestService struct {
	tickets  repository.TicketRepository
	guard    *dedup.Guard
	resolver *sitecontext.Resolver
	media    MediaRehoster
	hasher   *identity.Hasher
	composer *reply.Composer
	sender   ReplySender
	events   events.Dispatcher
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// IngestDependencies bundles collaborators for the ingest pipeline.
type IngestDependencies struct {
	TicketRepo repository.TicketRepository
	Guard      *dedup.Guard
	Resolver   *sitecontext.Resolver
	Media      MediaRehoster
	Hasher     *identity.Hasher
	Composer   *reply.Composer
	Sender     ReplySender
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewIngestService constructs the pipeline.
func NewIngestService(deps IngestDependencies) *IngestService {
	return &IngestService{
		tickets:  deps.TicketRepo,
		guard:    deps.Guard,
		resolver: deps.Resolver,
		media:    deps.Media,
		hasher:   deps.Hasher,
		composer: deps.Composer,
		sender:   deps.Sender,
		events:   deps.Dispatcher,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

var statusCommandPattern = regexp.MustCompile(`(?i)^\s*status\s+([A-Za-z0-9-]+)\s*$`)

// HandleInbound processes one delivery end to end. A nil error means
// the delivery was durably handled (or recognized as a duplicate) and
// the webhook should acknowledge success; an error signals an
// unexpected failure and asks upstream to retry.
func (s *IngestService) HandleInbound(ctx context.Context, msg *whatsapp.InboundMessage) error {
	// hard guard first: redeliveries are absorbed before any other work
	seen, err := s.guard.SeenProvider(ctx, msg.ID)
	if err != nil {
		return err
	}
	if seen {
		s.metrics.RecordDelivery("hard_duplicate")
		s.logger.Info("duplicate delivery ignored", zap.String("provider_message_id", msg.ID))
		s.guard.MarkProvider(ctx, msg.ID)
		return nil
	}

	rawText := msg.Body()

	if m := statusCommandPattern.FindStringSubmatch(rawText); m != nil {
		s.metrics.RecordDelivery("status_query")
		s.handleStatusCommand(ctx, msg.From, strings.ToUpper(m[1]))
		s.guard.MarkProvider(ctx, msg.ID)
		return nil
	}

	msgType := domain.MessageType(msg.Type)
	resolved, rejection, err := s.resolver.Resolve(ctx, rawText, msgType)
	if err != nil {
		return err
	}
	if rejection != nil {
		s.metrics.RecordDelivery("rejected")
		s.logger.Info("report rejected",
			zap.String("provider_message_id", msg.ID),
			zap.String("reason", string(rejection.Reason)))
		s.sendBestEffort(ctx, msg.From, s.composer.Rejection(rejection.Reason))
		s.guard.MarkProvider(ctx, msg.ID)
		return nil
	}

	ticket := &domain.Ticket{
		TicketID:          GenerateTicketKey(),
		ProviderMessageID: msg.ID,
		ReporterHash:      s.hasher.Hash(msg.From),
		SiteID:            resolved.SiteID,
		SubSiteID:         resolved.SubSiteID,
		Status:            domain.TicketStatusOpen,
		Message: domain.Message{
			Type: msgType,
			Text: resolved.CleanedText,
		},
	}

	if ref := msg.Media(); ref != nil {
		ticket.Message.ProviderMediaID = &ref.ID
		ticket.Message.MimeType = &ref.MimeType
		hostedURL, err := s.media.Rehost(ctx, ref.ID, ref.MimeType)
		if err != nil {
			// degraded: the ticket is created text-only
			s.logger.Warn("media re-host failed",
				zap.String("provider_message_id", msg.ID), zap.Error(err))
		} else {
			ticket.Message.MediaURL = &hostedURL
		}
	}

	link, err := s.guard.FindSoftDuplicate(ctx, ticket.ReporterHash, ticket.SiteID, ticket.SubSiteID, ticket.Message.Text)
	if err != nil {
		return err
	}
	if link != nil {
		ticket.PossibleDuplicateOf = &link.RootTicketID
		ticket.DuplicateScore = &link.Score
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if repository.IsDuplicateKey(err) {
			// lost the insert race against a concurrent redelivery;
			// the unique constraint is the correctness boundary
			s.metrics.RecordDelivery("hard_duplicate")
			s.logger.Info("duplicate delivery absorbed at insert",
				zap.String("provider_message_id", msg.ID))
			s.guard.MarkProvider(ctx, msg.ID)
			return nil
		}
		return err
	}

	// the ticket row is durable; only now may the id enter the cache
	s.guard.MarkProvider(ctx, msg.ID)
	s.metrics.RecordDelivery("created")
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.TicketID),
		zap.String("site_id", ticket.SiteID),
		zap.String("type", string(msgType)),
		zap.Bool("soft_duplicate", link != nil))

	// persistence is durable at this point; replies are fire-and-forget
	if link != nil {
		s.sendBestEffort(ctx, msg.From, s.composer.DuplicateNotice(ticket, link.RootTicketID))
	} else {
		s.sendBestEffort(ctx, msg.From, s.composer.Confirmation(ticket))
	}

	s.publishCreated(ctx, ticket, resolved, msg.From)
	return nil
}

// NotifyTemporaryIssue sends the generic failure reply. Best effort:
// its own failure is swallowed.
func (s *IngestService) NotifyTemporaryIssue(ctx context.Context, to string) {
	if to == "" {
		return
	}
	s.sendBestEffort(ctx, to, s.composer.TemporaryIssue())
}

func (s *IngestService) handleStatusCommand(ctx context.Context, from, ticketID string) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		if repository.IsNotFound(err) {
			s.sendBestEffort(ctx, from, s.composer.StatusNotFound(ticketID))
			return
		}
		s.logger.Warn("status lookup failed", zap.String("ticket_id", ticketID), zap.Error(err))
		s.sendBestEffort(ctx, from, s.composer.TemporaryIssue())
		return
	}
	s.sendBestEffort(ctx, from, s.composer.StatusReply(ticket))
}

func (s *IngestService) sendBestEffort(ctx context.Context, to, body string) {
	if err := s.sender.SendText(ctx, to, body); err != nil {
		s.logger.Warn("reply delivery failed", zap.Error(err))
	}
}

func (s *IngestService) publishCreated(ctx context.Context, ticket *domain.Ticket, resolved *sitecontext.Context, replyTo string) {
	if s.events == nil {
		return
	}

	contentType := "text-only"
	text := ticket.Message.Text
	imageURL := ""
	if ticket.Message.Type == domain.MessageTypeImage && ticket.Message.MediaURL != nil {
		imageURL = *ticket.Message.MediaURL
		if resolved.Placeholder {
			contentType = "image-only"
			text = ""
		} else {
			contentType = "image+text"
		}
	} else if resolved.Placeholder {
		text = ""
	}

	_ = s.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		TicketID:  ticket.TicketID,
		Timestamp: time.Now(),
		Payload: events.TicketCreatedPayload{
			TicketPK:    ticket.ID,
			ReplyTo:     replyTo,
			Text:        text,
			ImageURL:    imageURL,
			SiteType:    resolved.SiteType,
			ContentType: contentType,
			SiteID:      ticket.SiteID,
			SubSiteID:   ticket.SubSiteID,
		},
	})
}
