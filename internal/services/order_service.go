package services

import (
	"context"

	"keebshop/internal/domain"
	applog "keebshop/internal/log"
	"keebshop/internal/validate"
)

type OrderService struct {
	api     OrderBackend
	profile ProfileBackend
	cart    *CartService
	catalog *CatalogService
}

func NewOrderService(api OrderBackend, profile ProfileBackend, cart *CartService, catalog *CatalogService) *OrderService {
	return &OrderService{api: api, profile: profile, cart: cart, catalog: catalog}
}

// CheckoutForm returns a form prefilled from the profile. A failed profile
// lookup leaves the fields blank.
func (s *OrderService) CheckoutForm(ctx context.Context) validate.CheckoutForm {
	form := validate.CheckoutForm{PaymentMethod: validate.DefaultPaymentMethod}
	p, err := s.profile.Profile(ctx)
	if err != nil {
		return form
	}
	form.PhoneNumber = p.PhoneNumber
	form.ShippingAddress = p.Address
	return form
}

// Checkout places an order for the current cart. The cart is reloaded first
// so the admission check sees current stock, and again afterwards so the
// emptied server cart shows up locally.
func (s *OrderService) Checkout(ctx context.Context, form validate.CheckoutForm) (domain.Order, error) {
	form = form.Normalize()
	if err := validate.Struct(form); err != nil {
		return domain.Order{}, err
	}
	if err := s.cart.Refresh(ctx); err != nil {
		return domain.Order{}, err
	}
	cart := s.cart.Cart()
	if err := cart.CheckoutAdmission(); err != nil {
		return domain.Order{}, err
	}
	order, err := s.api.Checkout(ctx, domain.CheckoutRequest{
		Items:           cart.Lines(),
		PhoneNumber:     form.PhoneNumber,
		ShippingAddress: form.ShippingAddress,
		BillingAddress:  form.BillingAddress,
		PaymentMethod:   form.PaymentMethod,
	})
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.cart.Refresh(ctx); err != nil {
		applog.Error(nil, "cart.refresh.fail", err, map[string]any{"after": "checkout"})
	}
	if s.catalog != nil {
		s.catalog.Invalidate()
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	page, err := s.api.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	return s.api.Order(ctx, id)
}
