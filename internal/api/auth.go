package api

import (
	"context"
	"net/http"

	"keebshop/internal/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, creds, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, reg, &out)
	return out, err
}
