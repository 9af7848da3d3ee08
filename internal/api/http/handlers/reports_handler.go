package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/safetydesk/incident-service/internal/api/dto"
	"github.com/safetydesk/incident-service/internal/auth"
	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/service"
	apperrors "github.com/safetydesk/incident-service/pkg/util"
)

// ReportsHandler manages the report review endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// ListReports GET /api/reports.
func (h *ReportsHandler) ListReports(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	reports, err := h.reports.ListReports(c.UserContext(), admin, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, reportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateReport PATCH /api/reports/:id.
func (h *ReportsHandler) UpdateReport(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.reports.UpdateReportStatus(c.UserContext(), admin, c.Params("id"), domain.ReportStatus(strings.ToLower(req.Status)))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// DeleteReport DELETE /api/reports/:id.
func (h *ReportsHandler) DeleteReport(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	if err := h.reports.DeleteReport(c.UserContext(), admin, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
