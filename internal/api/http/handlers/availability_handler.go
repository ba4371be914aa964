package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/NinjaGame428/church-management-sub001/internal/api/dto"
	"github.com/NinjaGame428/church-management-sub001/internal/auth"
	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/service"
	apperrors "github.com/NinjaGame428/church-management-sub001/pkg/util"
)

// AvailabilityHandler manages the availability ledger endpoints.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(availabilityService *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: availabilityService}
}

// Upsert POST /availability.
func (h *AvailabilityHandler) Upsert(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	input, err := parseAvailabilityBody(c)
	if err != nil {
		return err
	}

	entry, err := h.service.Upsert(c.Context(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AvailabilitySummary(entry)})
}

// Update PUT /availability/:id.
func (h *AvailabilityHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	input, err := parseAvailabilityBody(c)
	if err != nil {
		return err
	}

	entry, err := h.service.Update(c.Context(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AvailabilitySummary(entry)})
}

// Delete DELETE /availability/:id.
func (h *AvailabilityHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMine GET /availability.
func (h *AvailabilityHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return err
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return err
		}
		to = &parsed
	}

	entries, err := h.service.ListMine(c.Context(), principal.User, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": availabilityItems(entries)})
}

// ListForDate GET /admin/availability?date=YYYY-MM-DD.
func (h *AvailabilityHandler) ListForDate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		return err
	}

	entries, err := h.service.ListForDate(c.Context(), principal.User, date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": availabilityItems(entries)})
}

func parseAvailabilityBody(c *fiber.Ctx) (service.AvailabilityInput, error) {
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return service.AvailabilityInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return service.AvailabilityInput{}, err
	}
	return service.AvailabilityInput{
		Date:      date,
		Status:    req.Status,
		ServiceID: req.ServiceID,
		Notes:     req.Notes,
	}, nil
}

func availabilityItems(entries []domain.Availability) []dto.AvailabilityResponse {
	items := make([]dto.AvailabilityResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.AvailabilitySummary(&entries[i]))
	}
	return items
}
