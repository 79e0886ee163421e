package api

import (
	"context"
	"net/http"

	"keebshop/internal/domain"
)

func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	var out domain.Profile
	err := c.doJSON(ctx, http.MethodGet, "/profile", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Profile, error) {
	var out domain.Profile
	err := c.doJSON(ctx, http.MethodPut, "/profile", nil, upd, &out)
	return out, err
}
