package services

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"keebshop/internal/catalog"
	"keebshop/internal/domain"
)

const featuredCount = 6

// CatalogService owns the listing filters. The product query runs again
// only when the active filter differs from the one last fetched.
type CatalogService struct {
	api CatalogBackend

	mu      sync.Mutex
	filters catalog.Filters
	fetched *catalog.Filter
	page    domain.Page[domain.Product]
}

func NewCatalogService(api CatalogBackend, pageSize int) *CatalogService {
	return &CatalogService{api: api, filters: catalog.NewSized(pageSize)}
}

func (s *CatalogService) Filters() catalog.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Update replaces the filter state with fn's result and returns it.
func (s *CatalogService) Update(fn func(catalog.Filters) catalog.Filters) catalog.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = fn(s.filters)
	return s.filters
}

// Products returns the listing for the active filter.
func (s *CatalogService) Products(ctx context.Context) (domain.Page[domain.Product], catalog.Filter, error) {
	s.mu.Lock()
	active := s.filters.Active()
	if s.fetched != nil && s.fetched.Equal(active) {
		page := s.page
		s.mu.Unlock()
		return page, active, nil
	}
	s.mu.Unlock()

	page, err := s.api.ListProducts(ctx, active.Query())
	if err != nil {
		return domain.Page[domain.Product]{}, active, err
	}

	s.mu.Lock()
	// A newer commit may have landed while the request was out; only the
	// result for the current active filter is kept.
	if s.filters.Active().Equal(active) {
		s.fetched = &active
		s.page = page
	}
	s.mu.Unlock()
	return page, active, nil
}

// Invalidate forces the next Products call to query the backend.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.fetched = nil
	s.mu.Unlock()
}

func (s *CatalogService) Product(ctx context.Context, id int64) (domain.Product, error) {
	return s.api.Product(ctx, id)
}

func (s *CatalogService) Brands(ctx context.Context) ([]string, error) {
	return s.api.Brands(ctx)
}

// Layouts falls back to the known enumeration when the backend cannot list
// them.
func (s *CatalogService) Layouts(ctx context.Context) []domain.KeyboardLayout {
	ls, err := s.api.Layouts(ctx)
	if err != nil || len(ls) == 0 {
		return append([]domain.KeyboardLayout(nil), domain.Layouts...)
	}
	return ls
}

// Featured is the first page of the unfiltered catalog for the home page.
func (s *CatalogService) Featured(ctx context.Context) ([]domain.Product, error) {
	page, err := s.api.ListProducts(ctx, url.Values{"size": {strconv.Itoa(featuredCount)}})
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}
