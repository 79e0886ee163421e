package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	"keebshop/internal/domain"
	applog "keebshop/internal/log"
	"keebshop/internal/services"
	"keebshop/internal/validate"
)

type AdminHandler struct {
	Admin   *services.AdminService
	Catalog *services.CatalogService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Admin.Dashboard(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return err
	}
	return render(c, "admin/dashboard", fiber.Map{"Title": "Admin Dashboard", "Stats": stats})
}

// GET /admin/products
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	ps, err := h.Admin.Products(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return err
	}
	return render(c, "admin/products", fiber.Map{"Title": "Products", "Products": ps})
}

func (h *AdminHandler) form(c *fiber.Ctx, status int, id int64, form validate.ProductForm, fields map[string]string, msg string) error {
	action := "/admin/products"
	if id > 0 {
		action = "/admin/products/" + strconv.FormatInt(id, 10)
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return renderStatus(c, status, "admin/product_form", fiber.Map{
		"Title":     "Product",
		"ProductID": id,
		"Action":    action,
		"Form":      form,
		"Errors":    fields,
		"Err":       msg,
		"Layouts":   h.Catalog.Layouts(c.UserContext()),
		"MaxImage":  humanize.IBytes(uint64(h.Admin.MaxImageBytes())),
	})
}

// GET /admin/products/new
func (h *AdminHandler) NewProduct(c *fiber.Ctx) error {
	return h.form(c, fiber.StatusOK, 0, validate.ProductForm{Layout: string(domain.LayoutFullSize)}, nil, "")
}

// GET /admin/products/:id/edit
func (h *AdminHandler) EditProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	p, err := h.Admin.Product(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.form(c, fiber.StatusOK, id, validate.ProductFormFrom(p), nil, "")
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	return h.saveProduct(c, 0)
}

// POST /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	return h.saveProduct(c, id)
}

func (h *AdminHandler) saveProduct(c *fiber.Ctx, id int64) error {
	var form validate.ProductForm
	if err := c.BodyParser(&form); err != nil {
		return h.form(c, fiber.StatusBadRequest, id, form, nil, "Please check the form and try again.")
	}
	ctx := c.UserContext()

	if url, err := h.upload(c); err != nil {
		var tooLarge *services.ImageTooLargeError
		switch {
		case errors.Is(err, api.ErrSessionInvalid):
			return err
		case errors.As(err, &tooLarge), errors.Is(err, services.ErrUnsupportedImage), errors.Is(err, services.ErrEmptyImage):
			applog.Security(c, "admin.products.upload.reject", map[string]any{"reason": err.Error()})
			return h.form(c, fiber.StatusBadRequest, id, form, map[string]string{"image": err.Error()}, err.Error())
		}
		applog.Error(c, "admin.products.upload.fail", err, nil)
		return h.form(c, fiber.StatusBadGateway, id, form, nil, api.PublicMessage(err, "Image upload failed. Please try again."))
	} else if url != "" {
		form.ImageURL = url
	}

	var (
		p      domain.Product
		err    error
		action = "admin.products.create"
	)
	if id > 0 {
		action = "admin.products.update"
		p, err = h.Admin.UpdateProduct(ctx, id, form)
	} else {
		p, err = h.Admin.CreateProduct(ctx, form)
	}
	if err != nil {
		if errors.Is(err, api.ErrSessionInvalid) {
			return err
		}
		if fields := validate.FieldErrors(err); fields != nil {
			applog.Security(c, "validation.fail", map[string]any{"form": "product"})
			return h.form(c, fiber.StatusBadRequest, id, form, fields, "Please fix the highlighted fields.")
		}
		status := api.StatusOf(err)
		if status < 400 || status >= 500 {
			applog.Error(c, action+".fail", err, map[string]any{"product_id": id})
			status = fiber.StatusBadGateway
		}
		return h.form(c, status, id, form, nil, api.PublicMessage(err, "Could not save the product."))
	}
	applog.Audit(c, action, map[string]any{"product_id": p.ID, "name": p.Name})
	return c.Redirect("/admin/products")
}

// upload stores the optional "image" part and returns its URL, or "" when
// no file was chosen.
func (h *AdminHandler) upload(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || (fh.Filename == "" && fh.Size == 0) {
		return "", nil
	}
	if limit := h.Admin.MaxImageBytes(); limit > 0 && fh.Size > limit {
		return "", &services.ImageTooLargeError{Size: fh.Size, Limit: limit}
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return h.Admin.UploadImage(c.UserContext(), fh.Filename, data)
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	if err := h.Admin.DeleteProduct(c.UserContext(), id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
		return err
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.Redirect("/admin/products")
}

// GET /admin/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.Admin.Orders(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return err
	}
	return render(c, "admin/orders", fiber.Map{"Title": "Orders", "Orders": ords})
}

// GET /admin/orders/:id
func (h *AdminHandler) Order(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	o, err := h.Admin.Order(c.UserContext(), id)
	if err != nil {
		return err
	}
	return render(c, "admin/order", fiber.Map{"Title": "Order", "Order": o, "Statuses": domain.OrderStatuses})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id or status")
	}
	form := validate.StatusForm{Status: c.FormValue("status")}
	o, err := h.Admin.SetOrderStatus(c.UserContext(), id, form)
	if err != nil {
		if validate.FieldErrors(err) != nil {
			applog.Security(c, "validation.fail", map[string]any{"form": "order_status", "status": form.Status})
			return c.Status(fiber.StatusBadRequest).SendString("invalid status")
		}
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return err
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": o.Status})
	return c.Redirect("/admin/orders/" + strconv.FormatInt(id, 10))
}
