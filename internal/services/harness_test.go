package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"keebshop/internal/api"
	"keebshop/internal/api/apitest"
	"keebshop/internal/domain"
	"keebshop/internal/repos"
	"keebshop/internal/services"
	"keebshop/internal/session"
)

type harness struct {
	backend *apitest.Backend
	client  *api.Client
	store   *session.Store
	cart    *services.CartService
	catalog *services.CatalogService
	orders  *services.OrderService
	admin   *services.AdminService
	auth    *services.AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	b := apitest.New(t)
	b.AddUser("alice", "secret1", domain.RoleUser)
	b.AddUser("root", "hunter22", domain.RoleAdmin)
	b.AddProduct(domain.Product{ID: 7, Name: "Keychron Q1", Brand: "Keychron", Layout: domain.LayoutSeventyFivePercent, Price: 169, StockQuantity: 10})
	b.AddProduct(domain.Product{ID: 8, Name: "Wooting 60HE", Brand: "Wooting", Layout: domain.LayoutSixtyPercent, Price: 175, StockQuantity: 3, RGBSupport: true})
	b.AddProduct(domain.Product{ID: 9, Name: "HHKB Pro", Brand: "PFU", Layout: domain.LayoutSixtyPercent, Price: 250, StockQuantity: 0})

	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := repos.NewSessionRepo(db, repos.NewSealer("test-secret"))

	client, err := api.New(b.URL(), api.WithTokenSource(repo))
	require.NoError(t, err)
	store := session.New(repo, client)
	session.NewSupervisor(ctx, store).Watch(client)

	h := &harness{backend: b, client: client, store: store}
	h.cart = services.NewCartService(client, store)
	h.catalog = services.NewCatalogService(client, 12)
	h.orders = services.NewOrderService(client, client, h.cart, h.catalog)
	h.admin = services.NewAdminService(client, h.catalog, 1<<20)
	h.auth = services.NewAuthService(store)
	store.Init(ctx)
	return h
}

func (h *harness) login(t *testing.T, username, password string) domain.Identity {
	t.Helper()
	id, err := h.store.Login(context.Background(), domain.Credentials{Username: username, Password: password})
	require.NoError(t, err)
	return id
}
