package services

import (
	"context"

	"keebshop/internal/domain"
	"keebshop/internal/validate"
)

type ProfileService struct {
	api ProfileBackend
}

func NewProfileService(api ProfileBackend) *ProfileService {
	return &ProfileService{api: api}
}

func (s *ProfileService) Get(ctx context.Context) (domain.Profile, error) {
	return s.api.Profile(ctx)
}

func (s *ProfileService) Update(ctx context.Context, form validate.ProfileForm) (domain.Profile, error) {
	if err := validate.Struct(form); err != nil {
		return domain.Profile{}, err
	}
	return s.api.UpdateProfile(ctx, form.Update())
}
