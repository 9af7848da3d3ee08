package domain

import "time"

// AdminRole enumerates operator tiers.
type AdminRole string

const (
	AdminRoleOwner        AdminRole = "OWNER"
	AdminRoleSiteAdmin    AdminRole = "SITE_ADMIN"
	AdminRoleSubSiteAdmin AdminRole = "SUB_SITE_ADMIN"
)

// Admin is an operator account. AllowedSites and AllowedSubSites define
// the access scope; sub-site entries use the "SITE/SUB" form. An empty
// scope means unrestricted for OWNER and no access for every other role.
type Admin struct {
	ID              string
	Email           string
	PasswordHash    string
	Role            AdminRole
	AllowedSites    []string
	AllowedSubSites []string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
