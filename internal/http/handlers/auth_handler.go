package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	"keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func landing(c *fiber.Ctx, admin bool) error {
	if admin {
		return c.Redirect("/admin")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if snap := h.Auth.Current(); snap.IsAuthenticated() {
		return landing(c, snap.Identity.IsAdmin())
	}
	return render(c, "login", fiber.Map{"Title": "Login", "Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form validate.LoginForm
	if err := c.BodyParser(&form); err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_form"})
		return renderStatus(c, fiber.StatusBadRequest, "login", fiber.Map{"Err": "Invalid username or password"})
	}

	id, err := h.Auth.Login(c.UserContext(), form)
	if err != nil {
		status, msg, reason := fiber.StatusUnauthorized, "Invalid username or password", "rejected"
		switch {
		case validate.FieldErrors(err) != nil:
			reason = "bad_format"
		case errors.Is(err, api.ErrSessionInvalid):
		case api.StatusOf(err) >= 400 && api.StatusOf(err) < 500:
			msg = api.PublicMessage(err, msg)
		default:
			status, msg, reason = fiber.StatusBadGateway, "Login is unavailable right now. Please try again.", "backend"
			log.Error(c, "auth.login.error", err, nil)
		}
		log.Security(c, "auth.login.fail", map[string]any{"username": form.Username, "reason": reason})
		return renderStatus(c, status, "login", fiber.Map{"Title": "Login", "Err": msg, "Username": form.Username})
	}

	c.Locals("user_id", id.ID)
	log.Audit(c, "auth.login.success", map[string]any{"username": id.Username, "role": id.Role})
	return landing(c, id.IsAdmin())
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	if snap := h.Auth.Current(); snap.IsAuthenticated() {
		return landing(c, snap.Identity.IsAdmin())
	}
	return render(c, "register", fiber.Map{"Title": "Register", "Form": validate.RegisterForm{}, "Errors": map[string]string{}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form validate.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return renderStatus(c, fiber.StatusBadRequest, "register", fiber.Map{
			"Title": "Register", "Form": form, "Errors": map[string]string{}, "Err": "Please check the form and try again.",
		})
	}
	// Never echo passwords back into the form.
	echo := form
	echo.Password, echo.ConfirmPassword = "", ""

	id, err := h.Auth.Register(c.UserContext(), form)
	if err != nil {
		if fields := validate.FieldErrors(err); fields != nil {
			log.Security(c, "auth.register.fail", map[string]any{"username": form.Username, "reason": "validation"})
			return renderStatus(c, fiber.StatusBadRequest, "register", fiber.Map{
				"Title": "Register", "Form": echo, "Errors": fields, "Err": "Please fix the highlighted fields.",
			})
		}
		status := api.StatusOf(err)
		if status < 400 || status >= 500 {
			log.Error(c, "auth.register.error", err, nil)
			status = fiber.StatusBadGateway
		}
		log.Security(c, "auth.register.fail", map[string]any{"username": form.Username, "reason": "rejected"})
		return renderStatus(c, status, "register", fiber.Map{
			"Title": "Register", "Form": echo, "Errors": map[string]string{},
			"Err": api.PublicMessage(err, "Registration failed. Please try again."),
		})
	}

	c.Locals("user_id", id.ID)
	log.Audit(c, "auth.register.success", map[string]any{"username": id.Username})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(int64)
	h.Auth.Logout(c.UserContext())
	log.Audit(c, "auth.logout", map[string]any{"was_user_id": uid})
	return c.Redirect("/")
}
