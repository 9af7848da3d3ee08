package access

import (
	"strings"

	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/repository"
)

// Three-tier scoping applied to every ticket read and write. Checks
// fail closed: an admin outside the computed scope gets a forbidden
// error, never a silently filtered result.

// CanView reports whether the admin may see the ticket.
func CanView(admin *domain.Admin, ticket *domain.Ticket) bool {
	if admin == nil || !admin.IsActive {
		return false
	}
	switch admin.Role {
	case domain.AdminRoleOwner:
		return true
	case domain.AdminRoleSiteAdmin:
		return containsFold(admin.AllowedSites, ticket.SiteID)
	case domain.AdminRoleSubSiteAdmin:
		if ticket.SubSiteID == nil {
			return false
		}
		return containsFold(admin.AllowedSites, ticket.SiteID) &&
			containsFold(admin.AllowedSubSites, ticket.SiteID+"/"+*ticket.SubSiteID)
	}
	return false
}

// CanMutate reports whether the admin may change ticket state.
func CanMutate(admin *domain.Admin, ticket *domain.Ticket) bool {
	return CanView(admin, ticket)
}

// CanClose gates the CLOSED transition to owner and site tiers.
func CanClose(admin *domain.Admin, ticket *domain.Ticket) bool {
	if !CanMutate(admin, ticket) {
		return false
	}
	return admin.Role == domain.AdminRoleOwner || admin.Role == domain.AdminRoleSiteAdmin
}

// CanDelete gates ticket and report deletion to the owner tier.
func CanDelete(admin *domain.Admin) bool {
	return admin != nil && admin.IsActive && admin.Role == domain.AdminRoleOwner
}

// ScopeFilter translates an admin's scope into listing restrictions.
// The returned filter is unrestricted for owners. For restricted tiers
// with an empty scope the boolean is false: no access at all.
func ScopeFilter(admin *domain.Admin) (repository.TicketFilter, bool) {
	if admin == nil || !admin.IsActive {
		return repository.TicketFilter{}, false
	}
	switch admin.Role {
	case domain.AdminRoleOwner:
		return repository.TicketFilter{}, true
	case domain.AdminRoleSiteAdmin:
		if len(admin.AllowedSites) == 0 {
			return repository.TicketFilter{}, false
		}
		return repository.TicketFilter{Sites: upperAll(admin.AllowedSites)}, true
	case domain.AdminRoleSubSiteAdmin:
		pairs := make([][2]string, 0, len(admin.AllowedSubSites))
		for _, entry := range admin.AllowedSubSites {
			site, sub, ok := strings.Cut(entry, "/")
			if !ok {
				continue
			}
			pairs = append(pairs, [2]string{strings.ToUpper(site), strings.ToUpper(sub)})
		}
		if len(pairs) == 0 {
			return repository.TicketFilter{}, false
		}
		return repository.TicketFilter{SubSitePairs: pairs}, true
	}
	return repository.TicketFilter{}, false
}

func containsFold(haystack []string, needle string) bool {
	for _, item := range haystack {
		if strings.EqualFold(item, needle) {
			return true
		}
	}
	return false
}

func upperAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToUpper(item)
	}
	return out
}
