package services

import (
	"context"

	"keebshop/internal/domain"
	"keebshop/internal/session"
	"keebshop/internal/validate"
)

// AuthService validates the login and registration forms before handing
// them to the session store.
type AuthService struct {
	Store *session.Store
}

func NewAuthService(store *session.Store) *AuthService {
	return &AuthService{Store: store}
}

func (s *AuthService) Login(ctx context.Context, form validate.LoginForm) (domain.Identity, error) {
	if err := validate.Struct(form); err != nil {
		return domain.Identity{}, err
	}
	return s.Store.Login(ctx, form.Credentials())
}

func (s *AuthService) Register(ctx context.Context, form validate.RegisterForm) (domain.Identity, error) {
	if err := validate.Struct(form); err != nil {
		return domain.Identity{}, err
	}
	return s.Store.Register(ctx, form.Registration())
}

func (s *AuthService) Logout(ctx context.Context) { s.Store.Logout(ctx) }

func (s *AuthService) Current() session.Snapshot { return s.Store.Snapshot() }
