package handlers

import (
	"keebshop/internal/api"
	"keebshop/internal/config"
	"keebshop/internal/services"
	"keebshop/internal/session"
)

// Deps holds the services and handlers built around one backend client and
// one session store.
type Deps struct {
	Store *session.Store
	Cart  *services.CartService

	AuthHandler      *AuthHandler
	HomeHandler      *HomeHandler
	ProductHandler   *ProductHandler
	FilterHandler    *FilterHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	ProfileHandler   *ProfileHandler
	AdminHandler     *AdminHandler

	MaxImageBytes int64
}

func NewDeps(client *api.Client, store *session.Store, cfg config.Config) *Deps {
	catalogSvc := services.NewCatalogService(client, cfg.PageSize)
	cartSvc := services.NewCartService(client, store)
	orderSvc := services.NewOrderService(client, client, cartSvc, catalogSvc)
	profileSvc := services.NewProfileService(client)
	adminSvc := services.NewAdminService(client, catalogSvc, cfg.MaxImageBytes())

	return &Deps{
		Store:            store,
		Cart:             cartSvc,
		AuthHandler:      &AuthHandler{Auth: services.NewAuthService(store)},
		HomeHandler:      &HomeHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		FilterHandler:    &FilterHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: services.NewInventoryService(client)},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Cart: cartSvc, Orders: orderSvc},
		ProfileHandler:   &ProfileHandler{Profile: profileSvc},
		AdminHandler:     &AdminHandler{Admin: adminSvc, Catalog: catalogSvc},
		MaxImageBytes:    cfg.MaxImageBytes(),
	}
}
