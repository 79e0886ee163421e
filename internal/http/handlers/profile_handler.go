package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	"keebshop/internal/domain"
	"keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type ProfileHandler struct {
	Profile *services.ProfileService
}

func profileForm(p domain.Profile) validate.ProfileForm {
	return validate.ProfileForm{
		DisplayName: p.DisplayName,
		Gender:      p.Gender,
		DateOfBirth: p.DateOfBirth,
		Address:     p.Address,
		PhoneNumber: p.PhoneNumber,
	}
}

func (h *ProfileHandler) page(c *fiber.Ctx, status int, p domain.Profile, form validate.ProfileForm, fields map[string]string, data fiber.Map) error {
	if fields == nil {
		fields = map[string]string{}
	}
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = "My Profile"
	data["Profile"] = p
	data["Form"] = form
	data["Errors"] = fields
	data["Genders"] = validate.Genders
	return renderStatus(c, status, "profile", data)
}

func (h *ProfileHandler) View(c *fiber.Ctx) error {
	p, err := h.Profile.Get(c.UserContext())
	if err != nil {
		return err
	}
	return h.page(c, fiber.StatusOK, p, profileForm(p), nil, nil)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var form validate.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid form")
	}
	ctx := c.UserContext()
	p, err := h.Profile.Update(ctx, form)
	if err == nil {
		log.Audit(c, "profile.update", nil)
		return h.page(c, fiber.StatusOK, p, profileForm(p), nil, fiber.Map{"Notice": "Profile updated!"})
	}
	if errors.Is(err, api.ErrSessionInvalid) {
		return err
	}
	current, gerr := h.Profile.Get(ctx)
	if gerr != nil {
		return gerr
	}
	if fields := validate.FieldErrors(err); fields != nil {
		log.Security(c, "validation.fail", map[string]any{"form": "profile"})
		return h.page(c, fiber.StatusBadRequest, current, form, fields, nil)
	}
	log.Error(c, "profile.update.fail", err, nil)
	return h.page(c, fiber.StatusBadGateway, current, form, nil, fiber.Map{"Err": "Failed to update profile"})
}
