package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	"keebshop/internal/domain"
	"keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type OrderHandler struct {
	Cart   *services.CartService
	Orders *services.OrderService
}

// GET /checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := h.Cart.Refresh(ctx); err != nil {
		return err
	}
	cart := h.Cart.Cart()
	if cart.Empty() {
		return c.Redirect("/cart")
	}
	return h.form(c, fiber.StatusOK, h.Orders.CheckoutForm(ctx), nil, "")
}

func (h *OrderHandler) form(c *fiber.Ctx, status int, form validate.CheckoutForm, fields map[string]string, msg string) error {
	cart := h.Cart.Cart()
	if cart == nil {
		cart = &domain.Cart{}
	}
	blocked := ""
	if err := cart.CheckoutAdmission(); err != nil {
		blocked = err.Error()
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return renderStatus(c, status, "checkout", fiber.Map{
		"Title":          "Checkout",
		"Cart":           cart,
		"Form":           form,
		"Errors":         fields,
		"Err":            msg,
		"Blocked":        blocked,
		"PaymentMethods": validate.PaymentMethods,
	})
}

// POST /checkout
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var form validate.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		return h.form(c, fiber.StatusBadRequest, form, nil, "Please check the form and try again.")
	}
	order, err := h.Orders.Checkout(c.UserContext(), form)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrSessionInvalid):
			return err
		case validate.FieldErrors(err) != nil:
			log.Security(c, "validation.fail", map[string]any{"form": "checkout"})
			return h.form(c, fiber.StatusBadRequest, form.Normalize(), validate.FieldErrors(err), "Please fix the highlighted fields.")
		case errors.Is(err, domain.ErrEmptyCart):
			return c.Redirect("/cart")
		case errors.Is(err, domain.ErrOutOfStockItems), errors.Is(err, domain.ErrOverstockedItems):
			log.Info(c, "order.place.blocked", map[string]any{"reason": err.Error()})
			return h.form(c, fiber.StatusConflict, form.Normalize(), nil, err.Error())
		}
		status := api.StatusOf(err)
		if status < 400 || status >= 500 {
			log.Error(c, "order.place.fail", err, nil)
			status = fiber.StatusBadGateway
		}
		return h.form(c, status, form.Normalize(), nil, api.PublicMessage(err, "Checkout failed. Please try again."))
	}
	log.Audit(c, "order.place", map[string]any{"order_id": order.ID, "items": len(order.Items)})
	return c.Redirect("/orders/" + strconv.FormatInt(order.ID, 10))
}

// GET /orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "orders", fiber.Map{"Title": "My Orders", "Orders": orders})
}

// GET /orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": "Order not found"})
	}
	order, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		if api.StatusOf(err) == fiber.StatusNotFound {
			return renderStatus(c, fiber.StatusNotFound, "notfound", fiber.Map{"Message": "Order not found"})
		}
		return err
	}
	return render(c, "order", fiber.Map{"Title": "Order", "Order": order, "Back": "/orders"})
}
