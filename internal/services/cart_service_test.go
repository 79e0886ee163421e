package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keebshop/internal/api"
	"keebshop/internal/domain"
	"keebshop/internal/services"
	"keebshop/internal/session"
)

func TestCartScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id := h.login(t, "alice", "secret1")
	assert.Equal(t, session.Authenticated, h.store.State())
	assert.Equal(t, domain.RoleUser, id.Role)

	require.NoError(t, h.cart.Add(ctx, 7, 2))
	c := h.cart.Cart()
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2, h.cart.ItemCount())

	err := h.cart.SetQuantity(ctx, 7, 0)
	assert.ErrorIs(t, err, services.ErrQuantityFloor)
	assert.Equal(t, 2, h.cart.ItemCount())

	require.NoError(t, h.cart.Remove(ctx, 7))
	assert.True(t, h.cart.Cart().Empty())
	assert.Equal(t, 0, h.cart.ItemCount())
}

func TestCartFollowsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	assert.Nil(t, h.cart.Cart())
	assert.Zero(t, h.backend.Calls("GET /cart"))

	h.login(t, "alice", "secret1")
	require.NotNil(t, h.cart.Cart(), "login loads the cart")
	require.NoError(t, h.cart.Add(ctx, 8, 1))

	h.store.Logout(ctx)
	assert.Nil(t, h.cart.Cart())
	assert.Equal(t, 0, h.cart.ItemCount())
}

func TestCartTotalComesFromServer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "alice", "secret1")
	require.NoError(t, h.cart.Add(ctx, 7, 1))
	require.NoError(t, h.cart.SetQuantity(ctx, 7, 3))
	assert.Equal(t, 507.0, h.cart.Cart().TotalAmount)
}

func TestCartFailureKeepsSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "alice", "secret1")
	require.NoError(t, h.cart.Add(ctx, 7, 1))

	err := h.cart.Add(ctx, 4040, 1)
	require.Error(t, err)
	assert.Equal(t, 404, api.StatusOf(err))
	assert.Equal(t, 1, h.cart.ItemCount())
}

func TestRevokedTokenInvalidatesSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.login(t, "alice", "secret1")
	require.NoError(t, h.cart.Add(ctx, 7, 1))

	h.backend.RevokeTokens()
	err := h.cart.Add(ctx, 7, 1)
	require.True(t, errors.Is(err, api.ErrSessionInvalid))
	assert.Equal(t, session.Anonymous, h.store.State())
	assert.Nil(t, h.cart.Cart())
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice", "secret1")
	assert.ErrorIs(t, h.cart.Add(context.Background(), 7, 0), services.ErrQuantityFloor)
	assert.Zero(t, h.backend.Calls("POST /cart/items"))
}
