// Package apitest provides an in-memory shop backend served over
// httptest for exercising the API client and everything built on it.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"keebshop/internal/domain"
)

type user struct {
	password string
	identity domain.Identity
	profile  domain.Profile
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int
}

// Backend is a small stateful fake of the shop REST API.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	users     map[string]*user
	tokens    map[string]string
	products  map[int64]domain.Product
	carts     map[string][]domain.CartItem
	orders    []domain.Order
	queries   []url.Values
	checkouts []domain.CheckoutRequest
	uploads   []Upload
	calls     map[string]int
	nextID    int64
}

func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:    map[string]*user{},
		tokens:   map[string]string{},
		products: map[int64]domain.Product{},
		carts:    map[string][]domain.CartItem{},
		calls:    map[string]int{},
		nextID:   1000,
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

func (b *Backend) AddUser(username, password string, role domain.Role) domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := domain.Identity{ID: b.nextID, Username: username, Email: username + "@keeb.test", Role: role}
	b.users[username] = &user{
		password: password,
		identity: id,
		profile:  domain.Profile{ID: id.ID, Username: username, Email: id.Email, DisplayName: username},
	}
	return id
}

// SetProfile overrides the stored profile fields of username.
func (b *Backend) SetProfile(username string, fn func(*domain.Profile)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u := b.users[username]; u != nil {
		fn(&u.profile)
	}
}

func (b *Backend) AddProduct(p domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products[p.ID] = p
}

func (b *Backend) SetStock(id int64, qty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.products[id]
	p.StockQuantity = qty
	b.products[id] = p
}

// AddOrder stores an order as if placed earlier.
func (b *Backend) AddOrder(o domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, o)
}

// RevokeTokens makes every issued token fail with 401.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]string{}
}

func (b *Backend) Queries() []url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]url.Values(nil), b.queries...)
}

func (b *Backend) Checkouts() []domain.CheckoutRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.CheckoutRequest(nil), b.checkouts...)
}

func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

func (b *Backend) Orders() []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Order(nil), b.orders...)
}

func (b *Backend) Product(id int64) (domain.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	return p, ok
}

// Calls counts requests by "METHOD pattern".
func (b *Backend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			b.calls[pattern]++
			b.mu.Unlock()
			fn(w, r)
		})
	}

	handle("POST /auth/login", b.login)
	handle("POST /auth/register", b.register)

	handle("GET /products", b.listProducts)
	handle("GET /products/brands", b.brands)
	handle("GET /products/layouts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Layouts)
	})
	handle("GET /products/{id}", b.getProduct)
	handle("POST /products/upload-image", b.auth(true, b.upload))

	handle("GET /cart", b.auth(false, b.getCart))
	handle("POST /cart/items", b.auth(false, b.addItem))
	handle("PUT /cart/items/{id}", b.auth(false, b.updateItem))
	handle("DELETE /cart/items/{id}", b.auth(false, b.removeItem))
	handle("DELETE /cart", b.auth(false, b.clearCart))

	handle("POST /orders/checkout", b.auth(false, b.checkout))
	handle("GET /orders", b.auth(false, b.listOrders))
	handle("GET /orders/{id}", b.auth(false, b.getOrder))

	handle("GET /profile", b.auth(false, b.getProfile))
	handle("PUT /profile", b.auth(false, b.putProfile))

	handle("GET /admin/products", b.auth(true, b.adminProducts))
	handle("POST /admin/products", b.auth(true, b.createProduct))
	handle("GET /admin/products/{id}", b.auth(true, func(w http.ResponseWriter, r *http.Request, _ *user) { b.getProduct(w, r) }))
	handle("PUT /admin/products/{id}", b.auth(true, b.updateProduct))
	handle("DELETE /admin/products/{id}", b.auth(true, b.deleteProduct))
	handle("GET /admin/orders", b.auth(true, b.adminOrders))
	handle("GET /admin/orders/{id}", b.auth(true, b.getOrder))
	handle("PUT /admin/orders/{id}/status", b.auth(true, b.setStatus))
	return mux
}

func (b *Backend) auth(admin bool, next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		u := b.users[b.tokens[tok]]
		b.mu.Unlock()
		if tok == "" || u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Full authentication is required"})
			return
		}
		if admin && u.identity.Role != domain.RoleAdmin {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "Access is denied"})
			return
		}
		next(w, r, u)
	}
}

func (b *Backend) issue(u *user) domain.AuthResponse {
	b.nextID++
	tok := fmt.Sprintf("jwt-%s-%d", u.identity.Username, b.nextID)
	b.tokens[tok] = u.identity.Username
	return domain.AuthResponse{
		Token: tok, Type: "Bearer", ID: u.identity.ID,
		Username: u.identity.Username, Email: u.identity.Email, Role: string(u.identity.Role),
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !readJSON(w, r, &creds) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[creds.Username]
	if u == nil || u.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
		return
	}
	writeJSON(w, http.StatusOK, b.issue(u))
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if !readJSON(w, r, &reg) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.users[reg.Username]; taken {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username is already taken"})
		return
	}
	b.nextID++
	id := domain.Identity{ID: b.nextID, Username: reg.Username, Email: reg.Email, Role: domain.RoleUser}
	u := &user{password: reg.Password, identity: id, profile: domain.Profile{
		ID: id.ID, Username: id.Username, Email: id.Email, DisplayName: reg.FirstName + " " + reg.LastName,
	}}
	b.users[reg.Username] = u
	writeJSON(w, http.StatusOK, b.issue(u))
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b.mu.Lock()
	b.queries = append(b.queries, q)
	var out []domain.Product
	for _, p := range b.products {
		if v := q.Get("brand"); v != "" && !strings.EqualFold(v, p.Brand) {
			continue
		}
		if v := q.Get("layout"); v != "" && v != string(p.Layout) {
			continue
		}
		if v := q.Get("minPrice"); v != "" {
			if f, _ := strconv.ParseFloat(v, 64); p.Price < f {
				continue
			}
		}
		if v := q.Get("maxPrice"); v != "" {
			if f, _ := strconv.ParseFloat(v, 64); p.Price > f {
				continue
			}
		}
		if v := q.Get("rgbSupport"); v != "" && strconv.FormatBool(p.RGBSupport) != v {
			continue
		}
		if v := q.Get("wirelessSupport"); v != "" && strconv.FormatBool(p.WirelessSupport) != v {
			continue
		}
		out = append(out, p)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, paginate(out, q))
}

func paginate[T any](all []T, q url.Values) domain.Page[T] {
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 12
	}
	total := len(all)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return domain.Page[T]{
		Content:       append([]T{}, all[start:end]...),
		TotalElements: int64(total),
		TotalPages:    (total + size - 1) / size,
	}
}

func (b *Backend) brands(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	seen := map[string]bool{}
	var out []string
	for _, p := range b.products {
		if p.Brand != "" && !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	b.mu.Unlock()
	sort.Strings(out)
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	b.mu.Lock()
	p, ok := b.products[id]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) cartLocked(u *user) *domain.Cart {
	items := b.carts[u.identity.Username]
	c := &domain.Cart{ID: u.identity.ID, UserID: u.identity.ID, Items: []domain.CartItem{}}
	for _, it := range items {
		it.Product = b.products[it.Product.ID]
		c.Items = append(c.Items, it)
		c.TotalAmount += it.Product.Price * float64(it.Quantity)
	}
	return c
}

func (b *Backend) getCart(w http.ResponseWriter, r *http.Request, u *user) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.cartLocked(u))
}

func (b *Backend) addItem(w http.ResponseWriter, r *http.Request, u *user) {
	var req domain.CartItemRequest
	if !readJSON(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[req.ProductID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	items := b.carts[u.identity.Username]
	for i := range items {
		if items[i].Product.ID == p.ID {
			items[i].Quantity += req.Quantity
			writeJSON(w, http.StatusOK, b.cartLocked(u))
			return
		}
	}
	b.nextID++
	b.carts[u.identity.Username] = append(items, domain.CartItem{ID: b.nextID, Product: p, Quantity: req.Quantity})
	writeJSON(w, http.StatusOK, b.cartLocked(u))
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request, u *user) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || qty < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Quantity must be at least 1"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.carts[u.identity.Username]
	for i := range items {
		if items[i].Product.ID == id {
			items[i].Quantity = qty
		}
	}
	writeJSON(w, http.StatusOK, b.cartLocked(u))
}

func (b *Backend) removeItem(w http.ResponseWriter, r *http.Request, u *user) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.carts[u.identity.Username]
	kept := items[:0]
	for _, it := range items {
		if it.Product.ID != id {
			kept = append(kept, it)
		}
	}
	b.carts[u.identity.Username] = kept
	writeJSON(w, http.StatusOK, b.cartLocked(u))
}

func (b *Backend) clearCart(w http.ResponseWriter, r *http.Request, u *user) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.carts, u.identity.Username)
	writeJSON(w, http.StatusOK, b.cartLocked(u))
}

func (b *Backend) checkout(w http.ResponseWriter, r *http.Request, u *user) {
	var req domain.CheckoutRequest
	if !readJSON(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkouts = append(b.checkouts, req)
	b.nextID++
	o := domain.Order{
		ID: b.nextID, UserID: u.identity.ID, Status: domain.OrderPending,
		CreatedAt:       "2025-11-02T10:15:00",
		ShippingAddress: req.ShippingAddress, BillingAddress: req.BillingAddress, PaymentMethod: req.PaymentMethod,
	}
	for _, line := range req.Items {
		p := b.products[line.ProductID]
		if p.StockQuantity < line.Quantity {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Insufficient stock for " + p.Name})
			return
		}
		o.Items = append(o.Items, domain.OrderItem{ID: line.ProductID, Product: p, Quantity: line.Quantity, UnitPrice: p.Price})
		o.TotalAmount += p.Price * float64(line.Quantity)
	}
	for _, line := range req.Items {
		p := b.products[line.ProductID]
		p.StockQuantity -= line.Quantity
		b.products[line.ProductID] = p
	}
	b.orders = append(b.orders, o)
	delete(b.carts, u.identity.Username)
	writeJSON(w, http.StatusOK, o)
}

func (b *Backend) listOrders(w http.ResponseWriter, r *http.Request, u *user) {
	b.mu.Lock()
	var mine []domain.Order
	for _, o := range b.orders {
		if o.UserID == u.identity.ID {
			mine = append(mine, o)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(mine, r.URL.Query()))
}

func (b *Backend) getOrder(w http.ResponseWriter, r *http.Request, u *user) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.orders {
		if o.ID == id && (o.UserID == u.identity.ID || u.identity.Role == domain.RoleAdmin) {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
}

func (b *Backend) getProfile(w http.ResponseWriter, r *http.Request, u *user) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, u.profile)
}

func (b *Backend) putProfile(w http.ResponseWriter, r *http.Request, u *user) {
	var upd domain.ProfileUpdate
	if !readJSON(w, r, &upd) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u.profile.DisplayName = upd.DisplayName
	u.profile.Gender = upd.Gender
	u.profile.DateOfBirth = upd.DateOfBirth
	u.profile.Address = upd.Address
	u.profile.PhoneNumber = upd.PhoneNumber
	writeJSON(w, http.StatusOK, u.profile)
}

func (b *Backend) adminProducts(w http.ResponseWriter, r *http.Request, _ *user) {
	b.mu.Lock()
	out := make([]domain.Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, p)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createProduct(w http.ResponseWriter, r *http.Request, _ *user) {
	var p domain.Product
	if !readJSON(w, r, &p) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p.ID = b.nextID
	b.products[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request, _ *user) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var p domain.Product
	if !readJSON(w, r, &p) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	p.ID = id
	b.products[id] = p
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) deleteProduct(w http.ResponseWriter, r *http.Request, _ *user) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	b.mu.Lock()
	delete(b.products, id)
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) adminOrders(w http.ResponseWriter, r *http.Request, _ *user) {
	b.mu.Lock()
	out := append([]domain.Order{}, b.orders...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) setStatus(w http.ResponseWriter, r *http.Request, _ *user) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == id {
			b.orders[i].Status = status
			writeJSON(w, http.StatusOK, b.orders[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
}

func (b *Backend) upload(w http.ResponseWriter, r *http.Request, _ *user) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "file is required"})
		return
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{Filename: hdr.Filename, ContentType: hdr.Header.Get("Content-Type"), Size: len(data)})
	b.mu.Unlock()
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, "/uploads/"+hdr.Filename)
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
