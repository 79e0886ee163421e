package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	"keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	if err := h.Cart.Refresh(c.UserContext()); err != nil {
		log.Error(c, "cart.refresh.fail", err, nil)
		if errors.Is(err, api.ErrSessionInvalid) {
			return err
		}
		return h.page(c, fiber.StatusBadGateway, "Could not load your cart. Please retry.")
	}
	return h.page(c, fiber.StatusOK, "")
}

func (h *CartHandler) page(c *fiber.Ctx, status int, msg string) error {
	cart := h.Cart.Cart()
	blocked := ""
	if err := cart.CheckoutAdmission(); err != nil && !cart.Empty() {
		blocked = err.Error()
	}
	c.Locals("cart_count", cart.ItemCount())
	return renderStatus(c, status, "cart", fiber.Map{"Title": "Cart", "Cart": cart, "Blocked": blocked, "Err": msg})
}

// POST /cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	id, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty, ok := validate.Qty(c.FormValue("quantity"))
	if !ok {
		qty = 1
	}
	if err := h.Cart.Add(c.UserContext(), id, qty); err != nil {
		return h.fail(c, "cart.add.fail", id, err)
	}
	log.Info(c, "cart.add", map[string]any{"product_id": id, "qty": qty})
	return c.Redirect("/cart")
}

// POST /cart/items/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid product")
	}
	qty, ok := validate.Qty(c.FormValue("quantity"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "quantity"})
		return h.page(c, fiber.StatusBadRequest, "Enter a valid quantity")
	}
	if err := h.Cart.SetQuantity(c.UserContext(), id, qty); err != nil {
		return h.fail(c, "cart.update.fail", id, err)
	}
	return c.Redirect("/cart")
}

// POST /cart/items/:id/delete
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid product")
	}
	if err := h.Cart.Remove(c.UserContext(), id); err != nil {
		return h.fail(c, "cart.remove.fail", id, err)
	}
	log.Info(c, "cart.remove", map[string]any{"product_id": id})
	return c.Redirect("/cart")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(c.UserContext()); err != nil {
		return h.fail(c, "cart.clear.fail", 0, err)
	}
	return c.Redirect("/cart")
}

// fail renders the cart with the reason a mutation was refused. Session
// failures go to the error handler.
func (h *CartHandler) fail(c *fiber.Ctx, action string, productID int64, err error) error {
	switch {
	case errors.Is(err, api.ErrSessionInvalid):
		return err
	case errors.Is(err, services.ErrQuantityFloor):
		return h.page(c, fiber.StatusBadRequest, "Quantity must be at least 1")
	}
	status := api.StatusOf(err)
	if status < 400 || status >= 500 {
		log.Error(c, action, err, map[string]any{"product_id": productID})
		return h.page(c, fiber.StatusBadGateway, "Could not update your cart. Please retry.")
	}
	log.Info(c, action, map[string]any{"product_id": productID, "status": status})
	return h.page(c, status, api.PublicMessage(err, "Could not update your cart."))
}
