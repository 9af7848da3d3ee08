package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/safetydesk/incident-service/internal/api/dto"
	"github.com/safetydesk/incident-service/internal/auth"
	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/service"
	apperrors "github.com/safetydesk/incident-service/pkg/util"
)

// TicketsHandler manages administrative ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	reports *service.ReportService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, reports *service.ReportService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, reports: reports}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}

	var statuses []domain.TicketStatus
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			statuses = append(statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	tickets, err := h.tickets.ListTickets(c.UserContext(), admin, statuses, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:ticketId.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), admin, strings.ToUpper(c.Params("ticketId")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// UpdateStatus PATCH /api/tickets/:ticketId/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	input := service.StatusUpdateInput{
		Status:          domain.TicketStatus(strings.ToUpper(req.Status)),
		ResolutionNotes: req.ResolutionNotes,
		PhotoMimeType:   req.PhotoMimeType,
	}
	if req.ResolutionPhoto != "" {
		photo, err := base64.StdEncoding.DecodeString(req.ResolutionPhoto)
		if err != nil {
			return apperrors.NewValidationError("resolution_photo must be base64 encoded", nil)
		}
		input.ResolutionPhoto = photo
	}
	if input.PhotoMimeType == "" {
		input.PhotoMimeType = "image/jpeg"
	}

	ticket, err := h.tickets.UpdateStatus(c.UserContext(), admin, strings.ToUpper(c.Params("ticketId")), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// DeleteTicket DELETE /api/tickets/:ticketId.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), admin, strings.ToUpper(c.Params("ticketId"))); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RaiseReport POST /api/tickets/:ticketId/reports.
func (h *TicketsHandler) RaiseReport(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.reports.RaiseReport(c.UserContext(), admin, strings.ToUpper(c.Params("ticketId")), req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reportResponse(report)})
}

// ListTicketReports GET /api/tickets/:ticketId/reports.
func (h *TicketsHandler) ListTicketReports(c *fiber.Ctx) error {
	admin, ok := auth.AdminFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	reports, err := h.reports.ListTicketReports(c.UserContext(), admin, strings.ToUpper(c.Params("ticketId")))
	if err != nil {
		return err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, reportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		TicketID:            ticket.TicketID,
		SiteID:              ticket.SiteID,
		SubSiteID:           ticket.SubSiteID,
		MessageType:         ticket.Message.Type,
		Status:              ticket.Status,
		PossibleDuplicateOf: ticket.PossibleDuplicateOf,
		CreatedAt:           ticket.CreatedAt,
		UpdatedAt:           ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketID:            ticket.TicketID,
		ReporterHash:        ticket.ReporterHash,
		Message:             ticket.Message,
		SiteID:              ticket.SiteID,
		SubSiteID:           ticket.SubSiteID,
		Status:              ticket.Status,
		PossibleDuplicateOf: ticket.PossibleDuplicateOf,
		DuplicateScore:      ticket.DuplicateScore,
		AIAnalysis:          ticket.AIAnalysis,
		Resolution:          ticket.Resolution,
		CreatedAt:           ticket.CreatedAt,
		UpdatedAt:           ticket.UpdatedAt,
	}
}

func reportResponse(report *domain.TicketReport) dto.ReportResponse {
	return dto.ReportResponse{
		ID:        report.ID,
		TicketID:  report.TicketKey,
		RaisedBy:  report.RaisedBy,
		Reason:    report.Reason,
		Status:    report.Status,
		CreatedAt: report.CreatedAt,
		UpdatedAt: report.UpdatedAt,
	}
}
