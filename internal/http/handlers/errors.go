package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	applog "keebshop/internal/log"
)

const genericMessage = "Something went wrong. Please try again."

// ErrorHandler sends rejected sessions to the login page and renders a
// friendly page for everything else without exposing internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, api.ErrSessionInvalid) {
		applog.Security(c, "session.expired.redirect", nil)
		return c.Redirect("/login")
	}

	code := fiber.StatusInternalServerError
	msg := genericMessage
	var fe *fiber.Error
	switch status := api.StatusOf(err); {
	case errors.As(err, &fe):
		code = fe.Code
		if code == fiber.StatusNotFound {
			msg = "Page not found"
		}
	case status == fiber.StatusNotFound:
		code, msg = fiber.StatusNotFound, "This item is no longer available"
	case status == fiber.StatusForbidden:
		code, msg = fiber.StatusForbidden, "Access denied"
	case status >= 400 && status < 500:
		code, msg = status, api.PublicMessage(err, genericMessage)
	case status != 0:
		code, msg = fiber.StatusBadGateway, "The shop is unavailable right now. Please try again."
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
	}
	if rerr := render(c.Status(code), "notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
