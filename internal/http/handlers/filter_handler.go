package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/catalog"
	"keebshop/internal/domain"
	"keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type FilterHandler struct {
	Catalog *services.CatalogService
}

// Edit replaces the draft with the submitted form. The draft is committed
// unless the form asked only to save it.
func (h *FilterHandler) Edit(c *fiber.Ctx) error {
	layout := strings.TrimSpace(c.FormValue("layout"))
	if layout != "" && !domain.KeyboardLayout(layout).Valid() {
		log.Security(c, "validation.fail", map[string]any{"field": "layout"})
		layout = ""
	}
	brand := term(c, "brand")
	switchType := term(c, "switchType")
	minPrice := price(c, "minPrice")
	maxPrice := price(c, "maxPrice")
	rgb := checkbox(c.FormValue("rgbSupport"))
	wireless := checkbox(c.FormValue("wirelessSupport"))
	commit := c.FormValue("action") != "save"

	fs := h.Catalog.Update(func(fs catalog.Filters) catalog.Filters {
		fs = fs.SetLayout(layout).
			SetBrand(brand).
			SetSwitchType(switchType).
			SetRGBSupport(rgb).
			SetWirelessSupport(wireless).
			SetPriceBounds(minPrice, maxPrice)
		if commit {
			fs = fs.Apply()
		}
		return fs
	})
	if commit {
		log.Info(c, "catalog.filter.apply", map[string]any{"query": fs.Active().Query().Encode()})
	}
	return c.Redirect("/products", fiber.StatusSeeOther)
}

func (h *FilterHandler) Clear(c *fiber.Ctx) error {
	h.Catalog.Update(catalog.Filters.Clear)
	return c.Redirect("/products", fiber.StatusSeeOther)
}

func term(c *fiber.Ctx, field string) string {
	raw := c.FormValue(field)
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	v, ok := validate.Term(raw)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": field})
		return ""
	}
	return v
}

// price reads an optional non-negative bound; blank or malformed input
// leaves the bound unset.
func price(c *fiber.Ctx, field string) *float64 {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": field})
		return nil
	}
	return &v
}

// checkbox maps a ticked box to true and an unticked one to unset.
func checkbox(raw string) *bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil && v {
		return &v
	}
	if strings.EqualFold(strings.TrimSpace(raw), "on") {
		v := true
		return &v
	}
	return nil
}
