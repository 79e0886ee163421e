package handlers

import (
	"github.com/gofiber/fiber/v2"

	"keebshop/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u, ok := c.Locals("user").(*domain.Identity); ok && u != nil {
		data["User"] = u
	}
	n, _ := c.Locals("cart_count").(int)
	data["CartCount"] = n
	// Locals is populated by the CSRF middleware; the cookie covers requests
	// that skipped it.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// renderStatus renders tmpl with the given response status.
func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}
