package dto

import (
	"time"

	"github.com/safetydesk/incident-service/internal/domain"
)

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the issued bearer token.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Role      domain.AdminRole `json:"role"`
}

// SiteResponse is the site registry projection.
type SiteResponse struct {
	SiteID   string `json:"site_id"`
	Name     string `json:"name"`
	SiteType string `json:"site_type"`
}

// SubSiteResponse is the sub-site registry projection.
type SubSiteResponse struct {
	SiteID    string `json:"site_id"`
	SubSiteID string `json:"sub_site_id"`
	Name      string `json:"name"`
}

// DeepLinkResponse carries the QR text payload and chat deep link.
type DeepLinkResponse struct {
	Payload string `json:"payload"`
	Link    string `json:"link"`
}
