package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetydesk/incident-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func ownerAdmin() *domain.Admin {
	return &domain.Admin{ID: "a1", Role: domain.AdminRoleOwner, IsActive: true}
}

func siteAdmin(sites ...string) *domain.Admin {
	return &domain.Admin{ID: "a2", Role: domain.AdminRoleSiteAdmin, AllowedSites: sites, IsActive: true}
}

func subSiteAdmin(sites []string, subs []string) *domain.Admin {
	return &domain.Admin{ID: "a3", Role: domain.AdminRoleSubSiteAdmin, AllowedSites: sites, AllowedSubSites: subs, IsActive: true}
}

func TestCanView(t *testing.T) {
	gitaTicket := &domain.Ticket{SiteID: "GITA"}
	gitaSubTicket := &domain.Ticket{SiteID: "GITA", SubSiteID: strPtr("GITA1")}

	t.Run("owner sees everything", func(t *testing.T) {
		assert.True(t, CanView(ownerAdmin(), gitaTicket))
		assert.True(t, CanView(ownerAdmin(), gitaSubTicket))
	})

	t.Run("site admin limited to allowed sites", func(t *testing.T) {
		assert.True(t, CanView(siteAdmin("GITA"), gitaTicket))
		assert.False(t, CanView(siteAdmin("OTHER"), gitaTicket))
	})

	t.Run("site admin matching is case insensitive", func(t *testing.T) {
		assert.True(t, CanView(siteAdmin("gita"), gitaTicket))
	})

	t.Run("sub-site admin needs site and pair", func(t *testing.T) {
		admin := subSiteAdmin([]string{"GITA"}, []string{"GITA/GITA1"})
		assert.True(t, CanView(admin, gitaSubTicket))
		assert.False(t, CanView(admin, &domain.Ticket{SiteID: "GITA", SubSiteID: strPtr("GITA2")}))
	})

	t.Run("sub-site admin cannot see site-level tickets", func(t *testing.T) {
		admin := subSiteAdmin([]string{"GITA"}, []string{"GITA/GITA1"})
		assert.False(t, CanView(admin, gitaTicket))
	})

	t.Run("inactive admin sees nothing", func(t *testing.T) {
		admin := ownerAdmin()
		admin.IsActive = false
		assert.False(t, CanView(admin, gitaTicket))
	})

	t.Run("nil admin sees nothing", func(t *testing.T) {
		assert.False(t, CanView(nil, gitaTicket))
	})
}

func TestCanClose(t *testing.T) {
	ticket := &domain.Ticket{SiteID: "GITA", SubSiteID: strPtr("GITA1")}

	assert.True(t, CanClose(ownerAdmin(), ticket))
	assert.True(t, CanClose(siteAdmin("GITA"), ticket))
	assert.False(t, CanClose(subSiteAdmin([]string{"GITA"}, []string{"GITA/GITA1"}), ticket))
}

func TestCanDelete(t *testing.T) {
	assert.True(t, CanDelete(ownerAdmin()))
	assert.False(t, CanDelete(siteAdmin("GITA")))
	assert.False(t, CanDelete(subSiteAdmin([]string{"GITA"}, []string{"GITA/GITA1"})))
	assert.False(t, CanDelete(nil))
}

func TestScopeFilter(t *testing.T) {
	t.Run("owner gets an unrestricted filter", func(t *testing.T) {
		filter, allowed := ScopeFilter(ownerAdmin())
		require.True(t, allowed)
		assert.Empty(t, filter.Sites)
		assert.Empty(t, filter.SubSitePairs)
	})

	t.Run("site admin gets uppercase site allow-list", func(t *testing.T) {
		filter, allowed := ScopeFilter(siteAdmin("gita", "OTHER"))
		require.True(t, allowed)
		assert.Equal(t, []string{"GITA", "OTHER"}, filter.Sites)
	})

	t.Run("site admin with empty scope is denied", func(t *testing.T) {
		_, allowed := ScopeFilter(siteAdmin())
		assert.False(t, allowed)
	})

	t.Run("sub-site admin gets pairs", func(t *testing.T) {
		filter, allowed := ScopeFilter(subSiteAdmin([]string{"GITA"}, []string{"gita/gita1"}))
		require.True(t, allowed)
		require.Len(t, filter.SubSitePairs, 1)
		assert.Equal(t, [2]string{"GITA", "GITA1"}, filter.SubSitePairs[0])
	})

	t.Run("malformed sub-site entries are skipped", func(t *testing.T) {
		_, allowed := ScopeFilter(subSiteAdmin([]string{"GITA"}, []string{"no-separator"}))
		assert.False(t, allowed)
	})

	t.Run("inactive admin is denied", func(t *testing.T) {
		admin := ownerAdmin()
		admin.IsActive = false
		_, allowed := ScopeFilter(admin)
		assert.False(t, allowed)
	})
}
