package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/ai"
	"github.com/safetydesk/incident-service/internal/events"
	"github.com/safetydesk/incident-service/internal/reply"
	"github.com/safetydesk/incident-service/internal/repository"
)

// Sender delivers outbound platform messages.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// AnalysisWorker runs the AI risk assessment off the ticket-creation
// path. It subscribes to ticket-created events and processes each one
// in its own goroutine with a background context, so neither webhook
// request lifetimes nor analysis latency touch the pipeline.
type AnalysisWorker struct {
	analyzer *ai.Analyzer
	tickets  repository.TicketRepository
	composer *reply.Composer
	sender   Sender
	logger   *zap.Logger
	timeout  time.Duration
}

// NewAnalysisWorker constructs the worker.
func NewAnalysisWorker(analyzer *ai.Analyzer, tickets repository.TicketRepository, composer *reply.Composer, sender Sender, logger *zap.Logger) *AnalysisWorker {
	return &AnalysisWorker{
		analyzer: analyzer,
		tickets:  tickets,
		composer: composer,
		sender:   sender,
		logger:   logger,
		timeout:  2 * time.Minute,
	}
}

// Register subscribes the worker to ticket-created events.
func (w *AnalysisWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, w.handleTicketCreated)
}

func (w *AnalysisWorker) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	go w.analyze(event.TicketID, payload)
	return nil
}

func (w *AnalysisWorker) analyze(ticketID string, payload events.TicketCreatedPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	analysis, err := w.analyzer.Analyze(ctx, ai.Input{
		ImageURL:    payload.ImageURL,
		Text:        payload.Text,
		SiteType:    payload.SiteType,
		ContentType: payload.ContentType,
	})
	if err != nil {
		w.logger.Warn("analysis failed", zap.String("ticket_id", ticketID), zap.Error(err))
		return
	}
	if analysis == nil {
		// every provider unavailable; the ticket simply has no analysis
		w.logger.Info("no analysis available", zap.String("ticket_id", ticketID))
		return
	}

	if err := w.tickets.AttachAnalysis(ctx, payload.TicketPK, analysis); err != nil {
		w.logger.Error("attach analysis", zap.String("ticket_id", ticketID), zap.Error(err))
		return
	}
	w.logger.Info("analysis attached",
		zap.String("ticket_id", ticketID),
		zap.String("provider", analysis.Provider),
		zap.String("risk_level", string(analysis.RiskLevel)))

	if !analysis.LifeSavingRuleViolated {
		// a clean result sends nothing; silence is a valid reply
		return
	}
	ticket, err := w.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		w.logger.Warn("load ticket for advisory", zap.String("ticket_id", ticketID), zap.Error(err))
		return
	}
	if err := w.sender.SendText(ctx, payload.ReplyTo, w.composer.AIWarning(ticket, analysis)); err != nil {
		w.logger.Warn("send advisory", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}
