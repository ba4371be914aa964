package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/NinjaGame428/church-management-sub001/internal/api/dto"
	"github.com/NinjaGame428/church-management-sub001/internal/auth"
	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
	"github.com/NinjaGame428/church-management-sub001/internal/service"
	apperrors "github.com/NinjaGame428/church-management-sub001/pkg/util"
)

const dateLayout = "2006-01-02"

// ServicesHandler manages service lifecycle and assignment scheduling.
type ServicesHandler struct {
	schedules   *service.ScheduleService
	assignments *service.AssignmentService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(schedules *service.ScheduleService, assignments *service.AssignmentService) *ServicesHandler {
	return &ServicesHandler{schedules: schedules, assignments: assignments}
}

// CreateService POST /admin/services.
func (h *ServicesHandler) CreateService(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	input := service.ServiceInput{Title: req.Title, Date: date, Time: req.Time, Location: req.Location}
	svc, err := h.schedules.CreateService(c.Context(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ServiceSummary(svc)})
}

// UpdateService PUT /admin/services/:id.
func (h *ServicesHandler) UpdateService(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.ServiceInput{Title: req.Title, Time: req.Time, Location: req.Location}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return err
		}
		input.Date = date
	}

	svc, err := h.schedules.UpdateService(c.Context(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ServiceSummary(svc)})
}

// PublishService POST /admin/services/:id/publish.
func (h *ServicesHandler) PublishService(c *fiber.Ctx) error {
	return h.transition(c, h.schedules.PublishService)
}

// CancelService POST /admin/services/:id/cancel.
func (h *ServicesHandler) CancelService(c *fiber.Ctx) error {
	return h.transition(c, h.schedules.CancelService)
}

// DeleteService DELETE /admin/services/:id.
func (h *ServicesHandler) DeleteService(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.schedules.DeleteService(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetService GET /services/:id.
func (h *ServicesHandler) GetService(c *fiber.Ctx) error {
	svc, err := h.schedules.GetService(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ServiceSummary(svc)})
}

// ListServices GET /services.
func (h *ServicesHandler) ListServices(c *fiber.Ctx) error {
	filter := repository.ServiceFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.ServiceStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return err
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return err
		}
		filter.DateTo = &to
	}

	services, err := h.schedules.ListServices(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, dto.ServiceSummary(&services[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ScheduleAssignment POST /admin/services/:id/assignments.
func (h *ServicesHandler) ScheduleAssignment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ScheduleAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.Role == "" {
		return apperrors.NewValidationError("user_id, role required", nil)
	}

	assignment, err := h.assignments.ScheduleAssignment(c.Context(), principal.User, c.Params("id"), req.UserID, req.Role)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AssignmentSummary(assignment)})
}

// ListServiceAssignments GET /admin/services/:id/assignments.
func (h *ServicesHandler) ListServiceAssignments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	assignments, err := h.assignments.ListServiceAssignments(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, dto.AssignmentSummary(&assignments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *ServicesHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, actor *domain.User, id string) (*domain.Service, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	svc, err := fn(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ServiceSummary(svc)})
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date must use YYYY-MM-DD", map[string]any{"date": raw})
	}
	return date, nil
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
