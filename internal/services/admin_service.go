package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"keebshop/internal/domain"
	"keebshop/internal/validate"
)

var (
	ErrEmptyImage       = errors.New("image file is empty")
	ErrUnsupportedImage = errors.New("only PNG, JPEG, WebP or GIF images can be uploaded")
)

// ImageTooLargeError reports an upload over the configured limit.
type ImageTooLargeError struct {
	Size, Limit int64
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image size must be less than %s (got %s)",
		humanize.IBytes(uint64(e.Limit)), humanize.IBytes(uint64(e.Size)))
}

var uploadTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

type Dashboard struct {
	Products      int
	LowStock      int
	OutOfStock    int
	Orders        int
	PendingOrders int
}

type AdminService struct {
	api      AdminBackend
	catalog  *CatalogService
	maxImage int64
}

func NewAdminService(api AdminBackend, catalog *CatalogService, maxImageBytes int64) *AdminService {
	return &AdminService{api: api, catalog: catalog, maxImage: maxImageBytes}
}

func (s *AdminService) MaxImageBytes() int64 { return s.maxImage }

func (s *AdminService) Products(ctx context.Context) ([]domain.Product, error) {
	return s.api.AdminProducts(ctx)
}

func (s *AdminService) Product(ctx context.Context, id int64) (domain.Product, error) {
	return s.api.AdminProduct(ctx, id)
}

func (s *AdminService) CreateProduct(ctx context.Context, form validate.ProductForm) (domain.Product, error) {
	if err := validate.Struct(form); err != nil {
		return domain.Product{}, err
	}
	p, err := s.api.CreateProduct(ctx, form.Product())
	if err != nil {
		return domain.Product{}, err
	}
	s.touchCatalog()
	return p, nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, id int64, form validate.ProductForm) (domain.Product, error) {
	if err := validate.Struct(form); err != nil {
		return domain.Product{}, err
	}
	p := form.Product()
	p.ID = id
	out, err := s.api.UpdateProduct(ctx, id, p)
	if err != nil {
		return domain.Product{}, err
	}
	s.touchCatalog()
	return out, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.touchCatalog()
	return nil
}

func (s *AdminService) Orders(ctx context.Context) ([]domain.Order, error) {
	return s.api.AdminOrders(ctx)
}

func (s *AdminService) Order(ctx context.Context, id int64) (domain.Order, error) {
	return s.api.AdminOrder(ctx, id)
}

func (s *AdminService) SetOrderStatus(ctx context.Context, id int64, form validate.StatusForm) (domain.Order, error) {
	if err := validate.Struct(form); err != nil {
		return domain.Order{}, err
	}
	return s.api.UpdateOrderStatus(ctx, id, domain.OrderStatus(form.Status))
}

// UploadImage checks size and sniffed content type, then stores the image
// and returns the path the backend assigned to it.
func (s *AdminService) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if s.maxImage > 0 && int64(len(data)) > s.maxImage {
		return "", &ImageTooLargeError{Size: int64(len(data)), Limit: s.maxImage}
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), uploadTypes...) {
		return "", ErrUnsupportedImage
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload" + mt.Extension()
	}
	return s.api.UploadProductImage(ctx, name, mt.String(), data)
}

// Dashboard summarizes the catalog and order book for the admin home.
func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	products, err := s.api.AdminProducts(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	orders, err := s.api.AdminOrders(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{Products: len(products), Orders: len(orders)}
	for _, p := range products {
		switch p.Availability().Status {
		case "LOW_STOCK":
			d.LowStock++
		case "OUT_OF_STOCK":
			d.OutOfStock++
		}
	}
	for _, o := range orders {
		if o.Status == domain.OrderPending {
			d.PendingOrders++
		}
	}
	return d, nil
}

func (s *AdminService) touchCatalog() {
	if s.catalog != nil {
		s.catalog.Invalidate()
	}
}
