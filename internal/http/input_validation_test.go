package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestAvailabilityBadInputs(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)

	for _, q := range []string{"", "?productId=", "?productId=abc", "?productId=-4"} {
		if resp := br.get("/api/v1/availability" + q); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%q: want 400, got %d", q, resp.StatusCode)
		}
	}

	resp := br.get("/api/v1/availability?productId=9")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var avail struct {
		Status string `json:"status"`
		Qty    int    `json:"qty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&avail); err != nil {
		t.Fatal(err)
	}
	if avail.Status != "OUT_OF_STOCK" {
		t.Fatalf("unexpected availability %+v", avail)
	}
}

func TestRegisterValidation(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)

	resp := br.post("/register", url.Values{
		"username":        {"<script>alert(1)</script>"},
		"email":           {"not-an-email"},
		"password":        {"hunter2x"},
		"confirmPassword": {"hunter3x"},
		"firstName":       {"Kai"},
		"lastName":        {"Lee"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	for _, want := range []string{"Passwords do not match", "Enter a valid email address", "&lt;script&gt;"} {
		if !strings.Contains(body, want) {
			t.Fatalf("register page missing %q", want)
		}
	}
	if strings.Contains(body, "<script>alert(1)") {
		t.Fatal("user input rendered unescaped")
	}
	if strings.Contains(body, "hunter2x") {
		t.Fatal("password echoed back into the form")
	}
	if sf.store.IsAuthenticated() {
		t.Fatal("invalid registration must not sign in")
	}
}

func TestPostWithoutCSRFIsRejected(t *testing.T) {
	sf := newStorefront(t, true)

	req := httptest.NewRequest(http.MethodPost, "/products/filter", strings.NewReader("brand=PFU"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var resp *http.Response
	entries, _ := captureLogs(t, func() {
		var err error
		resp, err = sf.app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("want 403, got %d", resp.StatusCode)
	}
	if _, ok := findLog(entries, "csrf.fail"); !ok {
		t.Fatal("csrf failure not logged")
	}
}

func TestProfileValidation(t *testing.T) {
	sf := newStorefront(t, true)
	br := sf.browser(t)
	br.login("alice", "secret1")

	resp := br.post("/profile", url.Values{"displayName": {"Alice"}, "dateOfBirth": {"31/12/1990"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(readBody(t, resp), "Date of birth must be a date") {
		t.Fatal("missing date error")
	}

	resp = br.post("/profile", url.Values{"displayName": {"Alice K"}, "gender": {"Other"}, "phoneNumber": {"555 0100 22"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Profile updated!") || !strings.Contains(body, "Alice K") {
		t.Fatal("update not reflected")
	}
}
