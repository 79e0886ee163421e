package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"keebshop/internal/domain"
	applog "keebshop/internal/log"
	"keebshop/internal/session"
)

var ErrQuantityFloor = errors.New("quantity must be at least 1")

// CartService mirrors the server cart for the current session. Every
// mutation is one round trip and the returned snapshot replaces the local
// one; responses apply in the order they arrive.
type CartService struct {
	api  CartBackend
	sess *session.Store

	mu       sync.Mutex
	cart     *domain.Cart
	inflight atomic.Int32
}

// NewCartService wires the cart to session transitions: signing in loads
// the cart, signing out drops it.
func NewCartService(api CartBackend, sess *session.Store) *CartService {
	s := &CartService{api: api, sess: sess}
	sess.OnChange(func(ctx context.Context, _ session.Snapshot) {
		if err := s.Refresh(ctx); err != nil {
			applog.Error(nil, "cart.refresh.fail", err, nil)
		}
	})
	return s
}

// Refresh reloads the cart. Without a session, or when the fetch fails, the
// cart becomes absent.
func (s *CartService) Refresh(ctx context.Context) error {
	if !s.sess.IsAuthenticated() {
		s.set(nil)
		return nil
	}
	c, err := s.call(func() (*domain.Cart, error) { return s.api.Cart(ctx) })
	if err != nil {
		s.set(nil)
		return err
	}
	s.set(c)
	return nil
}

func (s *CartService) Add(ctx context.Context, productID int64, qty int) error {
	if qty < 1 {
		return ErrQuantityFloor
	}
	return s.mutate(func() (*domain.Cart, error) {
		return s.api.AddCartItem(ctx, domain.CartItemRequest{ProductID: productID, Quantity: qty})
	})
}

func (s *CartService) SetQuantity(ctx context.Context, productID int64, qty int) error {
	if qty < 1 {
		return ErrQuantityFloor
	}
	return s.mutate(func() (*domain.Cart, error) { return s.api.UpdateCartItem(ctx, productID, qty) })
}

func (s *CartService) Remove(ctx context.Context, productID int64) error {
	return s.mutate(func() (*domain.Cart, error) { return s.api.RemoveCartItem(ctx, productID) })
}

func (s *CartService) Clear(ctx context.Context) error {
	return s.mutate(func() (*domain.Cart, error) { return s.api.ClearCart(ctx) })
}

// Cart returns a copy of the current snapshot, nil when absent.
func (s *CartService) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Loading reports whether any cart call is in flight.
func (s *CartService) Loading() bool { return s.inflight.Load() > 0 }

// mutate leaves the local cart untouched on failure.
func (s *CartService) mutate(fn func() (*domain.Cart, error)) error {
	c, err := s.call(fn)
	if err != nil {
		return err
	}
	s.set(c)
	return nil
}

func (s *CartService) call(fn func() (*domain.Cart, error)) (*domain.Cart, error) {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)
	return fn()
}

func (s *CartService) set(c *domain.Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}
