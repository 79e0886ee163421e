package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"keebshop/internal/config"
	applog "keebshop/internal/log"
	"keebshop/web"
)

// NewApp builds the storefront with its middleware chain and routes.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: ErrorHandler,
		// room for the multipart envelope around a full-size image
		BodyLimit: int(deps.MaxImageBytes) + 1<<20,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(Identify(deps.Store, deps.Cart))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		Next: func(c *fiber.Ctx) bool {
			// read-only JSON probe
			return c.Path() == "/api/v1/availability"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return renderStatus(c, fiber.StatusForbidden, "notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Public pages ----------
	app.Get("/", deps.HomeHandler.Home)
	app.Get("/products", deps.ProductHandler.List)
	app.Post("/products/filter", deps.FilterHandler.Edit)
	app.Post("/products/filter/clear", deps.FilterHandler.Clear)
	app.Get("/products/:id", deps.ProductHandler.Detail)

	// ---------- Auth (login throttled) ----------
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "login", fiber.Map{"Title": "Login", "Err": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/logout", deps.AuthHandler.Logout)

	// ---------- API ----------
	v1 := app.Group("/api/v1")
	v1.Get("/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), deps.InventoryHandler.Check)

	// ---------- Cart & checkout (customers only) ----------
	consumer := RequireConsumer(deps.Store)
	app.Get("/cart", consumer, deps.CartHandler.View)
	app.Post("/cart/items", consumer, deps.CartHandler.Add)
	app.Post("/cart/items/:id", consumer, deps.CartHandler.Update)
	app.Post("/cart/items/:id/delete", consumer, deps.CartHandler.Remove)
	app.Post("/cart/clear", consumer, deps.CartHandler.Clear)
	app.Get("/checkout", consumer, deps.OrderHandler.Checkout)
	app.Post("/checkout", consumer, deps.OrderHandler.Place)

	// ---------- Account ----------
	signedIn := RequireUser(deps.Store)
	app.Get("/orders", signedIn, deps.OrderHandler.History)
	app.Get("/orders/:id", signedIn, deps.OrderHandler.View)
	app.Get("/profile", signedIn, deps.ProfileHandler.View)
	app.Post("/profile", signedIn, deps.ProfileHandler.Update)

	// ---------- Admin ----------
	admin := app.Group("/admin", RequireAdmin(deps.Store))
	admin.Get("/", deps.AdminHandler.Dashboard)
	admin.Get("/products", deps.AdminHandler.Products)
	admin.Get("/products/new", deps.AdminHandler.NewProduct)
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Get("/products/:id/edit", deps.AdminHandler.EditProduct)
	admin.Post("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Post("/products/:id/delete", deps.AdminHandler.DeleteProduct)
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Get("/orders/:id", deps.AdminHandler.Order)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)

	// ---------- Health & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "session": deps.Store.State().String()})
	})
	app.Use(func(c *fiber.Ctx) error {
		return renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
