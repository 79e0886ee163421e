package api

import (
	"context"
	"net/http"
	"strconv"

	"keebshop/internal/domain"
)

func (c *Client) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	var out domain.Order
	err := c.doJSON(ctx, http.MethodPost, "/orders/checkout", nil, req, &out)
	return out, err
}

func (c *Client) Orders(ctx context.Context) (domain.Page[domain.Order], error) {
	var out domain.Page[domain.Order]
	err := c.doJSON(ctx, http.MethodGet, "/orders", nil, nil, &out)
	return out, err
}

func (c *Client) Order(ctx context.Context, id int64) (domain.Order, error) {
	var out domain.Order
	err := c.doJSON(ctx, http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}
