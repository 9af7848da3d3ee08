package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetydesk/incident-service/internal/domain"
)

// TicketFilter captures administrative listing parameters. Scope
// restrictions are expressed as explicit allow-lists; an empty filter
// means unrestricted.
type TicketFilter struct {
	Sites        []string
	SubSitePairs [][2]string
	Statuses     []domain.TicketStatus
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Ticket, error)
	FindRecentOpen(ctx context.Context, reporterHash, siteID string, subSiteID *string, since time.Time) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, resolution *domain.Resolution) error
	AttachAnalysis(ctx context.Context, id string, analysis *domain.AIAnalysis) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_id, provider_message_id, reporter_hash,
       message_type, message_text, provider_media_id, mime_type, media_url,
       site_id, sub_site_id, status, possible_duplicate_of, duplicate_score,
       ai_analysis, resolution, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, provider_message_id, reporter_hash,
            message_type, message_text, provider_media_id, mime_type, media_url,
            site_id, sub_site_id, status, possible_duplicate_of, duplicate_score, ai_analysis)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.ProviderMessageID,
		ticket.ReporterHash,
		ticket.Message.Type,
		ticket.Message.Text,
		ticket.Message.ProviderMediaID,
		ticket.Message.MimeType,
		ticket.Message.MediaURL,
		ticket.SiteID,
		ticket.SubSiteID,
		ticket.Status,
		ticket.PossibleDuplicateOf,
		ticket.DuplicateScore,
		ticket.AIAnalysis,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *ticketRepository) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE provider_message_id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, providerMessageID)
}

func (r *ticketRepository) FindRecentOpen(ctx context.Context, reporterHash, siteID string, subSiteID *string, since time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM tickets
        WHERE reporter_hash=$1 AND site_id=$2 AND status='OPEN' AND created_at >= $3`, ticketColumns)
	args := []any{reporterHash, siteID, since}
	if subSiteID != nil {
		args = append(args, *subSiteID)
		query += fmt.Sprintf(" AND sub_site_id=$%d", len(args))
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	scope := []string{}
	if len(filter.Sites) > 0 {
		placeholders := make([]string, len(filter.Sites))
		for i, site := range filter.Sites {
			args = append(args, site)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		scope = append(scope, fmt.Sprintf("site_id IN (%s)", strings.Join(placeholders, ",")))
	}
	for _, pair := range filter.SubSitePairs {
		args = append(args, pair[0])
		siteArg := len(args)
		args = append(args, pair[1])
		subArg := len(args)
		scope = append(scope, fmt.Sprintf("(site_id=$%d AND sub_site_id=$%d)", siteArg, subArg))
	}
	if len(scope) > 0 {
		clauses = append(clauses, "("+strings.Join(scope, " OR ")+")")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, resolution *domain.Resolution) error {
	const query = `
        UPDATE tickets SET status=$1, resolution=COALESCE($2, resolution), updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, resolution, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) AttachAnalysis(ctx context.Context, id string, analysis *domain.AIAnalysis) error {
	const query = `UPDATE tickets SET ai_analysis=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, analysis, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.ProviderMessageID,
		&ticket.ReporterHash,
		&ticket.Message.Type,
		&ticket.Message.Text,
		&ticket.Message.ProviderMediaID,
		&ticket.Message.MimeType,
		&ticket.Message.MediaURL,
		&ticket.SiteID,
		&ticket.SubSiteID,
		&ticket.Status,
		&ticket.PossibleDuplicateOf,
		&ticket.DuplicateScore,
		&ticket.AIAnalysis,
		&ticket.Resolution,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketID,
			&ticket.ProviderMessageID,
			&ticket.ReporterHash,
			&ticket.Message.Type,
			&ticket.Message.Text,
			&ticket.Message.ProviderMediaID,
			&ticket.Message.MimeType,
			&ticket.Message.MediaURL,
			&ticket.SiteID,
			&ticket.SubSiteID,
			&ticket.Status,
			&ticket.PossibleDuplicateOf,
			&ticket.DuplicateScore,
			&ticket.AIAnalysis,
			&ticket.Resolution,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
