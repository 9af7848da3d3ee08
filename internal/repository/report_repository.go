package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetydesk/incident-service/internal/domain"
)

// ReportRepository manages admin-raised ticket flags. Read queries
// join the referenced ticket so every report carries its INC- key and
// can be restricted to the caller's site scope.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.TicketReport) error
	GetByID(ctx context.Context, id string) (*domain.TicketReport, error)
	ListByTicket(ctx context.Context, ticketPK string) ([]domain.TicketReport, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketReport, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) error
	Delete(ctx context.Context, id string) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository builds the repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportColumns = `r.id, r.ticket_pk, t.ticket_id, r.raised_by, r.reason,
       r.status, r.created_at, r.updated_at`

func (r *reportRepository) Create(ctx context.Context, report *domain.TicketReport) error {
	const query = `
        INSERT INTO ticket_reports (ticket_pk, raised_by, reason, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	if report.Status == "" {
		report.Status = domain.ReportStatusPending
	}
	return r.pool.QueryRow(ctx, query,
		report.TicketID,
		report.RaisedBy,
		report.Reason,
		report.Status,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.TicketReport, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM ticket_reports r
        JOIN tickets t ON t.id = r.ticket_pk
        WHERE r.id=$1`, reportColumns)
	var report domain.TicketReport
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.TicketID,
		&report.TicketKey,
		&report.RaisedBy,
		&report.Reason,
		&report.Status,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListByTicket(ctx context.Context, ticketPK string) ([]domain.TicketReport, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM ticket_reports r
        JOIN tickets t ON t.id = r.ticket_pk
        WHERE r.ticket_pk=$1 ORDER BY r.created_at DESC`, reportColumns)
	rows, err := r.pool.Query(ctx, query, ticketPK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *reportRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketReport, error) {
	clauses := []string{"1=1"}
	args := []any{}

	scope := []string{}
	if len(filter.Sites) > 0 {
		placeholders := make([]string, len(filter.Sites))
		for i, site := range filter.Sites {
			args = append(args, site)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		scope = append(scope, fmt.Sprintf("t.site_id IN (%s)", strings.Join(placeholders, ",")))
	}
	for _, pair := range filter.SubSitePairs {
		args = append(args, pair[0])
		siteArg := len(args)
		args = append(args, pair[1])
		subArg := len(args)
		scope = append(scope, fmt.Sprintf("(t.site_id=$%d AND t.sub_site_id=$%d)", siteArg, subArg))
	}
	if len(scope) > 0 {
		clauses = append(clauses, "("+strings.Join(scope, " OR ")+")")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT %s FROM ticket_reports r
        JOIN tickets t ON t.id = r.ticket_pk
        WHERE %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d`,
		reportColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	const query = `UPDATE ticket_reports SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_reports WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanReports(rows pgx.Rows) ([]domain.TicketReport, error) {
	var result []domain.TicketReport
	for rows.Next() {
		var report domain.TicketReport
		if err := rows.Scan(
			&report.ID,
			&report.TicketID,
			&report.TicketKey,
			&report.RaisedBy,
			&report.Reason,
			&report.Status,
			&report.CreatedAt,
			&report.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
