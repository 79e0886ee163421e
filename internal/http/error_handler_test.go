package handlers_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)

	resp := br.get("/products/999")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "This item is no longer available") {
		t.Fatal("missing friendly message")
	}
	if strings.Contains(body, "GET /products/999") || strings.Contains(body, "Product not found") {
		t.Fatal("backend details leaked into the page")
	}

	resp = br.get("/no/such/page")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(readBody(t, resp), "Page not found") {
		t.Fatal("missing not-found page")
	}
}

func TestUnreachableBackendIsServerError(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)
	br.login("alice", "secret1")
	sf.backend.Server.Close()

	var resp *http.Response
	entries, _ := captureLogs(t, func() {
		resp = br.get("/orders")
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("want 500 when the backend is unreachable, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Something went wrong") || strings.Contains(body, "connection refused") {
		t.Fatal("transport errors must stay out of the page")
	}
	if e, ok := findLog(entries, "server.error"); !ok || e.Error == "" {
		t.Fatalf("server error not logged: %+v", entries)
	}
}
