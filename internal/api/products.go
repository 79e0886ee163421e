package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"keebshop/internal/domain"
)

// ListProducts sends only the parameters present in query.
func (c *Client) ListProducts(ctx context.Context, query url.Values) (domain.Page[domain.Product], error) {
	var out domain.Page[domain.Product]
	err := c.doJSON(ctx, http.MethodGet, "/products", query, nil, &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	err := c.doJSON(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

func (c *Client) Brands(ctx context.Context) ([]string, error) {
	var out []string
	err := c.doJSON(ctx, http.MethodGet, "/products/brands", nil, nil, &out)
	return out, err
}

func (c *Client) Layouts(ctx context.Context) ([]domain.KeyboardLayout, error) {
	var out []domain.KeyboardLayout
	err := c.doJSON(ctx, http.MethodGet, "/products/layouts", nil, nil, &out)
	return out, err
}
