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

// SwapsHandler manages swap negotiation endpoints.
type SwapsHandler struct {
	service *service.SwapService
}

// NewSwapsHandler constructs handler.
func NewSwapsHandler(swapService *service.SwapService) *SwapsHandler {
	return &SwapsHandler{service: swapService}
}

// Create POST /swaps.
func (h *SwapsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ToUserID == "" || req.ServiceID == "" {
		return apperrors.NewValidationError("to_user_id, service_id required", nil)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	swap, err := h.service.CreateSwapRequest(c.Context(), principal.User, req.ToUserID, req.ServiceID, date, req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SwapSummary(swap)})
}

// Respond POST /swaps/:id/respond.
func (h *SwapsHandler) Respond(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SwapDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	decision := domain.SwapDecision(strings.ToLower(strings.TrimSpace(req.Decision)))
	swap, err := h.service.RespondToSwap(c.Context(), principal.User, c.Params("id"), decision)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SwapSummary(swap)})
}

// ListMine GET /swaps.
func (h *SwapsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	swaps, err := h.service.ListSwapRequestsForUser(c.Context(), principal.User, parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": swapItems(swaps)})
}

// ListAccepted GET /admin/swaps.
func (h *SwapsHandler) ListAccepted(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	swaps, err := h.service.ListSwapRequestsForAdmin(c.Context(), principal.User, parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": swapItems(swaps)})
}

func swapItems(swaps []domain.SwapRequest) []dto.SwapResponse {
	items := make([]dto.SwapResponse, 0, len(swaps))
	for i := range swaps {
		items = append(items, dto.SwapSummary(&swaps[i]))
	}
	return items
}
