package services

import (
	"context"
	"net/url"

	"keebshop/internal/domain"
)

// The backend contracts each service depends on. *api.Client satisfies all
// of them.

type CartBackend interface {
	Cart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, item domain.CartItemRequest) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, productID int64, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, productID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context) (*domain.Cart, error)
}

type CatalogBackend interface {
	ListProducts(ctx context.Context, query url.Values) (domain.Page[domain.Product], error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	Brands(ctx context.Context) ([]string, error)
	Layouts(ctx context.Context) ([]domain.KeyboardLayout, error)
}

type OrderBackend interface {
	Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error)
	Orders(ctx context.Context) (domain.Page[domain.Order], error)
	Order(ctx context.Context, id int64) (domain.Order, error)
}

type ProfileBackend interface {
	Profile(ctx context.Context) (domain.Profile, error)
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Profile, error)
}

type AdminBackend interface {
	AdminProducts(ctx context.Context) ([]domain.Product, error)
	AdminProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AdminOrders(ctx context.Context) ([]domain.Order, error)
	AdminOrder(ctx context.Context, id int64) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error)
	UploadProductImage(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
