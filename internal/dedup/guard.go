package dedup

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/config"
	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/repository"
)

// DuplicateLink points a new ticket at the root of an existing
// duplicate chain.
type DuplicateLink struct {
	RootTicketID string
	Score        float64
}

// Guard implements the hard (provider message id) and soft (recent
// similar report) duplicate checks. Redis is an advisory cache of
// durably handled ids, written only after the delivery outcome is
// persisted; the unique index on provider_message_id remains the
// correctness boundary for racing deliveries.
type Guard struct {
	tickets repository.TicketRepository
	redis   *redis.Client
	cfg     config.DedupConfig
	logger  *zap.Logger
}

// NewGuard constructs the guard. The redis client may be nil.
func NewGuard(tickets repository.TicketRepository, redisClient *redis.Client, cfg config.DedupConfig, logger *zap.Logger) *Guard {
	return &Guard{tickets: tickets, redis: redisClient, cfg: cfg, logger: logger}
}

// SeenProvider reports whether this provider message id was already
// durably handled. The cache is consulted read-only here: a delivery
// that failed mid-pipeline leaves no key behind, so its retry falls
// through to the database and is processed again. A redis failure
// degrades to the database check.
func (g *Guard) SeenProvider(ctx context.Context, providerMessageID string) (bool, error) {
	if g.redis != nil {
		hit, err := g.redis.Exists(ctx, providerKey(providerMessageID)).Result()
		if err != nil {
			g.logger.Warn("redis dedup check failed; falling back to database", zap.Error(err))
		} else if hit > 0 {
			return true, nil
		}
	}
	if _, err := g.tickets.GetByProviderMessageID(ctx, providerMessageID); err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkProvider records a durably handled provider message id in the
// cache. Best effort: a redis failure costs one database round-trip on
// the next redelivery, never correctness.
func (g *Guard) MarkProvider(ctx context.Context, providerMessageID string) {
	if g.redis == nil {
		return
	}
	if err := g.redis.SetNX(ctx, providerKey(providerMessageID), 1, g.cfg.ProviderIDTTL()).Err(); err != nil {
		g.logger.Warn("redis dedup mark failed", zap.Error(err))
	}
}

func providerKey(providerMessageID string) string {
	return "wamid:" + providerMessageID
}

// FindSoftDuplicate searches recent open tickets from the same reporter
// and location for a loosely matching text. The new ticket is still
// created; the returned link only annotates it. Links always point at
// the root of an existing chain.
func (g *Guard) FindSoftDuplicate(ctx context.Context, reporterHash, siteID string, subSiteID *string, text string) (*DuplicateLink, error) {
	since := time.Now().Add(-g.cfg.Window())
	candidates, err := g.tickets.FindRecentOpen(ctx, reporterHash, siteID, subSiteID, since)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if !TextsSimilar(candidates[i].Message.Text, text) {
			continue
		}
		return &DuplicateLink{
			RootTicketID: chainRoot(&candidates[i]),
			Score:        g.cfg.Confidence,
		}, nil
	}
	return nil, nil
}

// TextsSimilar is the bounded similarity predicate: case-insensitive
// substring containment in either direction over trimmed text.
func TextsSimilar(existing, incoming string) bool {
	a := strings.ToLower(strings.TrimSpace(existing))
	b := strings.ToLower(strings.TrimSpace(incoming))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// chainRoot resolves the root ticket id of a duplicate chain: a
// candidate that is itself linked contributes its own link target.
func chainRoot(candidate *domain.Ticket) string {
	if candidate.PossibleDuplicateOf != nil && *candidate.PossibleDuplicateOf != "" {
		return *candidate.PossibleDuplicateOf
	}
	return candidate.TicketID
}
