package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/config"
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

type sentMessage struct {
	to   string
	body string
}

type recordingSender struct {
	sent []sentMessage
	err  error
}

func (r *recordingSender) SendText(_ context.Context, to, body string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMessage{to: to, body: body})
	return nil
}

type stubRehoster struct {
	url   string
	err   error
	calls int
}

func (s *stubRehoster) Rehost(context.Context, string, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type memSiteRepo struct{}

func (memSiteRepo) GetSite(_ context.Context, siteID string) (*domain.Site, error) {
	if siteID == "GITA" {
		return &domain.Site{SiteID: "GITA", Name: "Gita Plant", SiteType: "factory", IsActive: true}, nil
	}
	return nil, repository.ErrNotFound
}

func (memSiteRepo) GetSubSite(_ context.Context, siteID, subSiteID string) (*domain.SubSite, error) {
	if siteID == "GITA" && subSiteID == "GITA1" {
		return &domain.SubSite{SiteID: "GITA", SubSiteID: "GITA1", Name: "Line 1", IsActive: true}, nil
	}
	return nil, repository.ErrNotFound
}

func (memSiteRepo) ListActiveSites(context.Context) ([]domain.Site, error) {
	return nil, nil
}

func (memSiteRepo) ListActiveSubSites(context.Context, string) ([]domain.SubSite, error) {
	return nil, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type ingestFixture struct {
	svc        *IngestService
	repo       *memTicketRepo
	sender     *recordingSender
	rehoster   *stubRehoster
	dispatcher *recordingDispatcher
}

func newIngestFixture() *ingestFixture {
	repo := newMemTicketRepo()
	sender := &recordingSender{}
	rehoster := &stubRehoster{url: "https://cdn.example.com/incidents/img.jpg"}
	dispatcher := &recordingDispatcher{}
	logger := zap.NewNop()

	svc := NewIngestService(IngestDependencies{
		TicketRepo: repo,
		Guard:      dedup.NewGuard(repo, nil, config.DedupConfig{WindowMinutes: 30, Confidence: 0.8}, logger),
		Resolver:   sitecontext.NewResolver(memSiteRepo{}, 10, "Image report (no caption provided)"),
		Media:      rehoster,
		Hasher:     identity.NewHasher("test-secret"),
		Composer:   reply.NewComposer(),
		Sender:     sender,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
		Logger:     logger,
	})
	return &ingestFixture{svc: svc, repo: repo, sender: sender, rehoster: rehoster, dispatcher: dispatcher}
}

func textMessage(id, from, body string) *whatsapp.InboundMessage {
	return &whatsapp.InboundMessage{ID: id, From: from, Type: "text", Text: &whatsapp.TextBody{Body: body}}
}

func imageMessage(id, from, caption string) *whatsapp.InboundMessage {
	return &whatsapp.InboundMessage{
		ID: id, From: from, Type: "image",
		Image: &whatsapp.MediaRef{ID: "media-1", MimeType: "image/jpeg", Caption: caption},
	}
}

func TestHandleInboundCreatesTicket(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()

	err := f.svc.HandleInbound(ctx, textMessage("wamid.1", "15551234567", "SITE:GITA|SUB:GITA1 Oil leakage near machine"))
	require.NoError(t, err)

	require.Len(t, f.repo.created, 1)
	ticket := f.repo.created[0]
	assert.Equal(t, "GITA", ticket.SiteID)
	require.NotNil(t, ticket.SubSiteID)
	assert.Equal(t, "GITA1", *ticket.SubSiteID)
	assert.Equal(t, "Oil leakage near machine", ticket.Message.Text)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "wamid.1", ticket.ProviderMessageID)
	assert.NotEqual(t, "15551234567", ticket.ReporterHash, "raw sender id must never be stored")
	assert.Nil(t, ticket.PossibleDuplicateOf)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "15551234567", f.sender.sent[0].to)
	assert.Contains(t, f.sender.sent[0].body, ticket.TicketID)

	require.Len(t, f.dispatcher.published, 1)
	payload, ok := f.dispatcher.published[0].Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "text-only", payload.ContentType)
	assert.Equal(t, "Oil leakage near machine", payload.Text)
	assert.Equal(t, "factory", payload.SiteType)
}

func TestHandleInboundHardDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	seedTicket(f.repo, domain.TicketStatusOpen)

	err := f.svc.HandleInbound(ctx, textMessage("wamid.seed", "15551234567", "SITE:GITA Oil leakage near machine"))
	require.NoError(t, err)
	assert.Empty(t, f.repo.created, "redelivery must not create a second ticket")
	assert.Empty(t, f.sender.sent, "redelivery must not re-send the confirmation")
}

func TestHandleInboundInsertRace(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.repo.createErr = duplicateKeyErr()

	err := f.svc.HandleInbound(ctx, textMessage("wamid.7", "15551234567", "SITE:GITA Oil leakage near machine"))
	require.NoError(t, err, "losing the insert race is a handled outcome, not a retryable failure")
	assert.Empty(t, f.repo.created)
	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.dispatcher.published)
}

func TestHandleInboundRetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()

	f.repo.createErr = errors.New("connection reset by peer")
	err := f.svc.HandleInbound(ctx, textMessage("wamid.retry", "15551234567", "SITE:GITA|SUB:GITA1 Oil leakage near machine"))
	require.Error(t, err, "a failed delivery must ask upstream to retry")
	assert.Empty(t, f.repo.created)

	// the platform redelivers the same message id after the 500; the
	// failed attempt must not have marked it as handled
	f.repo.createErr = nil
	err = f.svc.HandleInbound(ctx, textMessage("wamid.retry", "15551234567", "SITE:GITA|SUB:GITA1 Oil leakage near machine"))
	require.NoError(t, err)
	require.Len(t, f.repo.created, 1)
	assert.Equal(t, "wamid.retry", f.repo.created[0].ProviderMessageID)
	require.Len(t, f.sender.sent, 1)
}

func TestHandleInboundRejection(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()

	err := f.svc.HandleInbound(ctx, textMessage("wamid.2", "15551234567", "there is a gas smell in the basement"))
	require.NoError(t, err)
	assert.Empty(t, f.repo.created)
	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].body, "site code")
}

func TestHandleInboundStatusCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("replies with the ticket status", func(t *testing.T) {
		f := newIngestFixture()
		seedTicket(f.repo, domain.TicketStatusInProgress)

		err := f.svc.HandleInbound(ctx, textMessage("wamid.3", "15551234567", "status inc-test000001"))
		require.NoError(t, err)
		assert.Empty(t, f.repo.created)
		require.Len(t, f.sender.sent, 1)
		assert.Contains(t, f.sender.sent[0].body, "INC-TEST000001")
		assert.Contains(t, f.sender.sent[0].body, string(domain.TicketStatusInProgress))
	})

	t.Run("replies not found for unknown ids", func(t *testing.T) {
		f := newIngestFixture()

		err := f.svc.HandleInbound(ctx, textMessage("wamid.4", "15551234567", "status INC-NOPE"))
		require.NoError(t, err)
		require.Len(t, f.sender.sent, 1)
		assert.Contains(t, f.sender.sent[0].body, "could not find")
	})
}

func TestHandleInboundImages(t *testing.T) {
	ctx := context.Background()

	t.Run("captionless image gets the placeholder text", func(t *testing.T) {
		f := newIngestFixture()

		err := f.svc.HandleInbound(ctx, imageMessage("wamid.5", "15551234567", "SITE:GITA"))
		require.NoError(t, err)
		require.Len(t, f.repo.created, 1)
		ticket := f.repo.created[0]
		assert.Equal(t, "Image report (no caption provided)", ticket.Message.Text)
		require.NotNil(t, ticket.Message.MediaURL)
		assert.Equal(t, 1, f.rehoster.calls)

		require.Len(t, f.dispatcher.published, 1)
		payload := f.dispatcher.published[0].Payload.(events.TicketCreatedPayload)
		assert.Equal(t, "image-only", payload.ContentType)
		assert.Empty(t, payload.Text, "the placeholder is not real reporter text")
		assert.Equal(t, f.rehoster.url, payload.ImageURL)
	})

	t.Run("captioned image is image+text", func(t *testing.T) {
		f := newIngestFixture()

		err := f.svc.HandleInbound(ctx, imageMessage("wamid.6", "15551234567", "SITE:GITA worker without a harness on the roof"))
		require.NoError(t, err)
		require.Len(t, f.dispatcher.published, 1)
		payload := f.dispatcher.published[0].Payload.(events.TicketCreatedPayload)
		assert.Equal(t, "image+text", payload.ContentType)
		assert.Equal(t, "worker without a harness on the roof", payload.Text)
	})

	t.Run("re-host failure degrades to a text-only ticket", func(t *testing.T) {
		f := newIngestFixture()
		f.rehoster.err = errors.New("bucket offline")

		err := f.svc.HandleInbound(ctx, imageMessage("wamid.8", "15551234567", "SITE:GITA worker without a harness on the roof"))
		require.NoError(t, err, "media failure must not lose the report")
		require.Len(t, f.repo.created, 1)
		ticket := f.repo.created[0]
		assert.Nil(t, ticket.Message.MediaURL)
		require.NotNil(t, ticket.Message.ProviderMediaID, "the provider reference is kept for later retrieval")
	})
}

func TestHandleInboundSoftDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.repo.recent = []domain.Ticket{
		{TicketID: "INC-FIRST", Status: domain.TicketStatusOpen, Message: domain.Message{Text: "Oil leakage near machine"}},
	}

	err := f.svc.HandleInbound(ctx, textMessage("wamid.9", "15551234567", "SITE:GITA Oil leakage near machine 5"))
	require.NoError(t, err)

	require.Len(t, f.repo.created, 1)
	ticket := f.repo.created[0]
	require.NotNil(t, ticket.PossibleDuplicateOf, "the soft duplicate is still created, only annotated")
	assert.Equal(t, "INC-FIRST", *ticket.PossibleDuplicateOf)
	require.NotNil(t, ticket.DuplicateScore)
	assert.Equal(t, 0.8, *ticket.DuplicateScore)

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].body, "INC-FIRST")
}

func TestHandleInboundReplyFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.sender.err = errors.New("platform down")

	err := f.svc.HandleInbound(ctx, textMessage("wamid.10", "15551234567", "SITE:GITA Oil leakage near machine"))
	require.NoError(t, err, "a failed confirmation must not fail the durable ingest")
	assert.Len(t, f.repo.created, 1)
}
