package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/safetydesk/incident-service/internal/api/dto"
	"github.com/safetydesk/incident-service/internal/auth"
	"github.com/safetydesk/incident-service/internal/reply"
	"github.com/safetydesk/incident-service/internal/repository"
	apperrors "github.com/safetydesk/incident-service/pkg/util"
)

// SitesHandler exposes the site registry and QR deep-link payloads.
type SitesHandler struct {
	sites       repository.SiteRepository
	phoneNumber string
}

// NewSitesHandler constructs handler. phoneNumber is the business
// number embedded in deep links.
func NewSitesHandler(sites repository.SiteRepository, phoneNumber string) *SitesHandler {
	return &SitesHandler{sites: sites, phoneNumber: phoneNumber}
}

// ListSites GET /api/sites.
func (h *SitesHandler) ListSites(c *fiber.Ctx) error {
	if _, ok := auth.AdminFromContext(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	sites, err := h.sites.ListActiveSites(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SiteResponse, 0, len(sites))
	for _, site := range sites {
		items = append(items, dto.SiteResponse{
			SiteID:   site.SiteID,
			Name:     site.Name,
			SiteType: site.SiteType,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListSubSites GET /api/sites/:siteId/subsites.
func (h *SitesHandler) ListSubSites(c *fiber.Ctx) error {
	if _, ok := auth.AdminFromContext(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	siteID := strings.ToUpper(c.Params("siteId"))
	site, err := h.sites.GetSite(c.UserContext(), siteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("site", map[string]any{"site_id": siteID})
		}
		return err
	}
	subs, err := h.sites.ListActiveSubSites(c.UserContext(), site.SiteID)
	if err != nil {
		return err
	}
	items := make([]dto.SubSiteResponse, 0, len(subs))
	for _, sub := range subs {
		items = append(items, dto.SubSiteResponse{
			SiteID:    sub.SiteID,
			SubSiteID: sub.SubSiteID,
			Name:      sub.Name,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeepLink GET /api/sites/:siteId/deeplink?sub=SUB1 renders the QR
// text payload for a site or sub-site.
func (h *SitesHandler) DeepLink(c *fiber.Ctx) error {
	if _, ok := auth.AdminFromContext(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	siteID := strings.ToUpper(c.Params("siteId"))
	subSiteID := strings.ToUpper(c.Query("sub"))

	site, err := h.sites.GetSite(c.UserContext(), siteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("site", map[string]any{"site_id": siteID})
		}
		return err
	}
	if subSiteID != "" {
		if _, err := h.sites.GetSubSite(c.UserContext(), site.SiteID, subSiteID); err != nil {
			if repository.IsNotFound(err) {
				return apperrors.NewNotFound("sub-site", map[string]any{"site_id": siteID, "sub_site_id": subSiteID})
			}
			return err
		}
	}

	return c.JSON(fiber.Map{"data": dto.DeepLinkResponse{
		Payload: reply.DeepLinkPayload(site.SiteID, subSiteID),
		Link:    reply.DeepLink(h.phoneNumber, site.SiteID, subSiteID),
	}})
}
