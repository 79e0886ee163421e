package services

import (
	"context"
	"net/http"

	"keebshop/internal/api"
	"keebshop/internal/domain"
)

type InventoryService struct {
	Catalog CatalogBackend
}

func NewInventoryService(catalog CatalogBackend) *InventoryService {
	return &InventoryService{Catalog: catalog}
}

// CheckAvailability buckets the product's current stock into IN_STOCK,
// LOW_STOCK or OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID int64) (domain.Availability, error) {
	p, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		// Unknown products read as out of stock.
		if api.StatusOf(err) == http.StatusNotFound {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}
	return p.Availability(), nil
}
