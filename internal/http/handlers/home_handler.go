package handlers

import (
	"github.com/gofiber/fiber/v2"

	"keebshop/internal/log"
	"keebshop/internal/services"
)

type HomeHandler struct {
	Catalog *services.CatalogService
}

// Home shows featured products; a backend failure still renders the page.
func (h *HomeHandler) Home(c *fiber.Ctx) error {
	products, err := h.Catalog.Featured(c.UserContext())
	if err != nil {
		log.Error(c, "catalog.featured.fail", err, nil)
	}
	return render(c, "home", fiber.Map{"Products": products})
}
