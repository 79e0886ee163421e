package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)

	bad := url.Values{"username": {"alice"}, "password": {"wrong-pass"}}
	resp := br.post("/login", bad)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: want 401, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Invalid username or password") {
		t.Fatalf("missing login error message")
	}
	if sf.store.IsAuthenticated() {
		t.Fatal("failed login must not authenticate")
	}

	expectRedirect(t, br.login("alice", "secret1"), "/")
	if id := sf.store.Identity(); id == nil || id.Username != "alice" {
		t.Fatalf("session not established: %+v", id)
	}
	expectRedirect(t, br.post("/logout", nil), "/")
	if sf.store.IsAuthenticated() {
		t.Fatal("logout must clear the session")
	}

	// Two attempts used; three more fit in the window.
	for i := 0; i < 3; i++ {
		if resp := br.post("/login", bad); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: want 401, got %d", i+3, resp.StatusCode)
		}
	}
	resp = br.post("/login", bad)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("want 429 after the login limit, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Too many attempts") {
		t.Fatal("throttle page should explain the limit")
	}
}

func TestAdminLandsOnDashboard(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)

	expectRedirect(t, br.login("root", "hunter22"), "/admin")
	// already signed in
	expectRedirect(t, br.get("/login"), "/admin")
	expectRedirect(t, br.get("/register"), "/admin")
}

func TestRegisterSignsIn(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)

	resp := br.post("/register", url.Values{
		"username":        {"kai"},
		"email":           {"kai@example.com"},
		"password":        {"typing1"},
		"confirmPassword": {"typing1"},
		"firstName":       {"Kai"},
		"lastName":        {"Lee"},
	})
	expectRedirect(t, resp, "/")
	if id := sf.store.Identity(); id == nil || id.Username != "kai" {
		t.Fatalf("registration should sign in, got %+v", id)
	}
}

func TestHealthzReportsSession(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)
	br.login("alice", "secret1")

	resp := br.get("/healthz")
	if body := readBody(t, resp); !strings.Contains(body, `"session":"authenticated"`) {
		t.Fatalf("healthz should report the session state, got %s", body)
	}
}
