package domain

import "time"

// Site is a registry entity keyed by its normalized uppercase id.
type Site struct {
	SiteID    string
	Name      string
	SiteType  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubSite is uniquely keyed by (SiteID, SubSiteID).
type SubSite struct {
	SiteID    string
	SubSiteID string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
