package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	"keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("productId"))
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	id, ok := validate.ID(raw)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId"})
	}

	avail, err := h.Inv.CheckAvailability(c.UserContext(), id)
	if err != nil {
		log.Error(c, "inventory.check.fail", err, map[string]any{"product_id": id})
		status := fiber.StatusBadGateway
		if api.StatusOf(err) == 0 {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{"error": "availability is unavailable right now"})
	}
	return c.JSON(avail)
}
