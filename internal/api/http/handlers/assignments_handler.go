package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/NinjaGame428/church-management-sub001/internal/api/dto"
	"github.com/NinjaGame428/church-management-sub001/internal/auth"
	"github.com/NinjaGame428/church-management-sub001/internal/domain"
	"github.com/NinjaGame428/church-management-sub001/internal/service"
	apperrors "github.com/NinjaGame428/church-management-sub001/pkg/util"
)

// AssignmentsHandler manages the volunteer-facing assignment endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// ListMine GET /assignments.
func (h *AssignmentsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	assignments, err := h.service.ListUserAssignments(c.Context(), principal.User, parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, dto.AssignmentSummary(&assignments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Respond POST /assignments/:id/respond.
func (h *AssignmentsHandler) Respond(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	action := domain.ResponseAction(strings.ToLower(strings.TrimSpace(req.Action)))
	assignment, err := h.service.Respond(c.Context(), principal.User, c.Params("id"), action, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssignmentSummary(assignment)})
}
