package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/catalog"
	"keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List renders the page of products for the active filter. ?page=n moves
// to the one-based page n.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Security(c, "validation.fail", map[string]any{"field": "page"})
			n = 1
		}
		h.Catalog.Update(func(fs catalog.Filters) catalog.Filters { return fs.ChangePage(n) })
	}

	ctx := c.UserContext()
	page, active, err := h.Catalog.Products(ctx)
	if err != nil {
		log.Error(c, "catalog.list.fail", err, map[string]any{"query": active.Query().Encode()})
		return err
	}
	brands, err := h.Catalog.Brands(ctx)
	if err != nil {
		log.Error(c, "catalog.brands.fail", err, nil)
	}
	return render(c, "products", fiber.Map{
		"Title":        "Keyboards",
		"Page":         page,
		"Active":       active,
		"Draft":        h.Catalog.Filters().Draft(),
		"Current":      active.Page + 1,
		"Brands":       brands,
		"Layouts":      h.Catalog.Layouts(ctx),
		"PriceFloor":   catalog.PriceFloor,
		"PriceCeiling": catalog.PriceCeiling,
		"PriceStep":    catalog.PriceStep,
	})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return err
	}
	u := currentUser(c)
	return render(c, "product", fiber.Map{
		"Title":        p.Name,
		"Product":      p,
		"Availability": p.Availability(),
		"CanBuy":       u != nil && !u.IsAdmin(),
	})
}
