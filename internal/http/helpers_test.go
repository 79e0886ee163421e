package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"keebshop/internal/api"
	"keebshop/internal/api/apitest"
	"keebshop/internal/config"
	"keebshop/internal/domain"
	"keebshop/internal/http/handlers"
	applog "keebshop/internal/log"
	"keebshop/internal/repos"
	"keebshop/internal/session"
)

type storefront struct {
	app     *fiber.App
	backend *apitest.Backend
	store   *session.Store
}

// newStorefront wires the full app against a fake backend. With restore
// false the session store stays unresolved.
func newStorefront(t *testing.T, restore bool) *storefront {
	t.Helper()
	b := apitest.New(t)
	b.AddUser("alice", "secret1", domain.RoleUser)
	b.AddUser("root", "hunter22", domain.RoleAdmin)
	b.AddProduct(domain.Product{ID: 7, Name: "Keychron Q1", Brand: "Keychron", Layout: domain.LayoutSeventyFivePercent, Price: 169, StockQuantity: 10})
	b.AddProduct(domain.Product{ID: 8, Name: "Wooting 60HE", Brand: "Wooting", Layout: domain.LayoutSixtyPercent, Price: 175, StockQuantity: 3, RGBSupport: true})
	b.AddProduct(domain.Product{ID: 9, Name: "HHKB Pro", Brand: "PFU", Layout: domain.LayoutSixtyPercent, Price: 250, StockQuantity: 0})

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := repos.NewSessionRepo(db, repos.NewSealer("test-secret"))

	client, err := api.New(b.URL(), api.WithTokenSource(repo))
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	store := session.New(repo, client)
	session.NewSupervisor(context.Background(), store).Watch(client)

	cfg := config.Config{PageSize: 12, MaxImageMB: 1}
	app := handlers.NewApp(cfg, handlers.NewDeps(client, store, cfg))
	if restore {
		store.Init(context.Background())
	}
	return &storefront{app: app, backend: b, store: store}
}

// browser carries the CSRF cookie between requests the way a real browser
// would.
type browser struct {
	t    *testing.T
	app  *fiber.App
	csrf string
}

func (s *storefront) browser(t *testing.T) *browser {
	return &browser{t: t, app: s.app}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	if b.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: b.csrf})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_" && c.Value != "" {
			b.csrf = c.Value
		}
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) token() string {
	b.t.Helper()
	if b.csrf == "" {
		b.get("/healthz")
	}
	if b.csrf == "" {
		b.t.Fatal("csrf token missing")
	}
	return b.csrf
}

func (b *browser) post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.token())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(username, password string) *http.Response {
	b.t.Helper()
	resp := b.post("/login", url.Values{"username": {username}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		b.t.Fatalf("login %s: want 302, got %d", username, resp.StatusCode)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(raw)
}

func expectRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("want redirect to %s, got %d", want, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != want {
		t.Fatalf("want Location %s, got %s", want, loc)
	}
}

type logEntry struct {
	Level  string `json:"level"`
	Kind   string `json:"kind"`
	Action string `json:"action"`
	Reason string `json:"reason"`
	Path   string `json:"path"`
	Error  string `json:"error"`
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// captureLogs points the app logger at a buffer for the duration of fn.
func captureLogs(t *testing.T, fn func()) ([]logEntry, string) {
	t.Helper()
	var buf lockedBuffer
	applog.Setup(&buf, "debug", "json")
	defer applog.Setup(nil, "info", "json")
	fn()

	raw := buf.String()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("log line is not json: %q", line)
		}
		entries = append(entries, e)
	}
	return entries, raw
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
