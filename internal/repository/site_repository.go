package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetydesk/incident-service/internal/domain"
)

// SiteRepository manages the site registry.
type SiteRepository interface {
	GetSite(ctx context.Context, siteID string) (*domain.Site, error)
	GetSubSite(ctx context.Context, siteID, subSiteID string) (*domain.SubSite, error)
	ListActiveSites(ctx context.Context) ([]domain.Site, error)
	ListActiveSubSites(ctx context.Context, siteID string) ([]domain.SubSite, error)
}

type siteRepository struct {
	pool *pgxpool.Pool
}

// NewSiteRepository builds the repository.
func NewSiteRepository(pool *pgxpool.Pool) SiteRepository {
	return &siteRepository{pool: pool}
}

func (r *siteRepository) GetSite(ctx context.Context, siteID string) (*domain.Site, error) {
	const query = `
        SELECT site_id, name, site_type, is_active, created_at, updated_at
        FROM sites WHERE site_id=$1`
	var site domain.Site
	if err := r.pool.QueryRow(ctx, query, siteID).Scan(
		&site.SiteID,
		&site.Name,
		&site.SiteType,
		&site.IsActive,
		&site.CreatedAt,
		&site.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) GetSubSite(ctx context.Context, siteID, subSiteID string) (*domain.SubSite, error) {
	const query = `
        SELECT site_id, sub_site_id, name, is_active, created_at, updated_at
        FROM sub_sites WHERE site_id=$1 AND sub_site_id=$2`
	var sub domain.SubSite
	if err := r.pool.QueryRow(ctx, query, siteID, subSiteID).Scan(
		&sub.SiteID,
		&sub.SubSiteID,
		&sub.Name,
		&sub.IsActive,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *siteRepository) ListActiveSites(ctx context.Context) ([]domain.Site, error) {
	const query = `
        SELECT site_id, name, site_type, is_active, created_at, updated_at
        FROM sites WHERE is_active = TRUE ORDER BY site_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Site
	for rows.Next() {
		var site domain.Site
		if err := rows.Scan(&site.SiteID, &site.Name, &site.SiteType, &site.IsActive, &site.CreatedAt, &site.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, site)
	}
	return result, rows.Err()
}

func (r *siteRepository) ListActiveSubSites(ctx context.Context, siteID string) ([]domain.SubSite, error) {
	const query = `
        SELECT site_id, sub_site_id, name, is_active, created_at, updated_at
        FROM sub_sites WHERE site_id=$1 AND is_active = TRUE ORDER BY sub_site_id`
	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SubSite
	for rows.Next() {
		var sub domain.SubSite
		if err := rows.Scan(&sub.SiteID, &sub.SubSiteID, &sub.Name, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
