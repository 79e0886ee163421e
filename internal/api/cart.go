package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"keebshop/internal/domain"
)

func (c *Client) Cart(ctx context.Context) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil, nil)
}

func (c *Client) AddCartItem(ctx context.Context, item domain.CartItemRequest) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/items", nil, item)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int) (*domain.Cart, error) {
	q := url.Values{"quantity": {strconv.Itoa(quantity)}}
	return c.cartCall(ctx, http.MethodPut, cartItemPath(productID), q, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, productID int64) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, cartItemPath(productID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart", nil, nil)
}

func cartItemPath(productID int64) string {
	return "/cart/items/" + strconv.FormatInt(productID, 10)
}

func (c *Client) cartCall(ctx context.Context, method, path string, q url.Values, in any) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.doJSON(ctx, method, path, q, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
