package handlers

import (
	"github.com/gofiber/fiber/v2"

	"keebshop/internal/domain"
	"keebshop/internal/gate"
	applog "keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/session"
)

// Identify exposes the session identity and cart size to templates and logs.
func Identify(store *session.Store, cart *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := store.Identity(); id != nil {
			c.Locals("user", id)
			c.Locals("user_id", id.ID)
			c.Locals("cart_count", cart.ItemCount())
		}
		return c.Next()
	}
}

// Require admits the request only when the gate allows the session to see
// a view with requirement req.
func Require(store *session.Store, req gate.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := store.Snapshot()
		d := gate.Decide(snap, req)
		switch d {
		case gate.Admit:
			return c.Next()
		case gate.Wait:
			c.Set("Refresh", "1")
			return render(c, "loading", fiber.Map{"Title": "Loading"})
		case gate.RedirectLogin:
			applog.Security(c, "access.denied.anonymous", nil)
		case gate.RedirectHome:
			applog.Security(c, "access.denied.admin", map[string]any{"role": snap.Role()})
		case gate.RedirectAdminDashboard:
			applog.Info(c, "access.redirect.admin", nil)
		}
		return c.Redirect(d.Target())
	}
}

func RequireAdmin(store *session.Store) fiber.Handler    { return Require(store, gate.Admin) }
func RequireConsumer(store *session.Store) fiber.Handler { return Require(store, gate.Consumer) }

// RequireUser admits any signed-in role.
func RequireUser(store *session.Store) fiber.Handler { return Require(store, gate.SignedIn) }

func currentUser(c *fiber.Ctx) *domain.Identity {
	u, _ := c.Locals("user").(*domain.Identity)
	return u
}
