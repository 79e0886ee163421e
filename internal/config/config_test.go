package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.PageSize != 12 || cfg.MaxImageMB != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Host != "127.0.0.1" || cfg.Addr() != "127.0.0.1:8080" {
		t.Fatalf("server must default to loopback, got %q", cfg.Addr())
	}
	if cfg.LogFile != "" {
		t.Fatalf("log file should be opt-in, got %q", cfg.LogFile)
	}
	if cfg.MaxImageBytes() != 10<<20 {
		t.Fatalf("want 10 MiB, got %d", cfg.MaxImageBytes())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KEEBSHOP_API_BASE_URL", "https://shop.example/api")
	t.Setenv("KEEBSHOP_PAGE_SIZE", "24")
	t.Setenv("KEEBSHOP_COOKIE_SECURE", "true")
	t.Setenv("KEEBSHOP_HOST", "0.0.0.0")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBaseURL != "https://shop.example/api" || cfg.PageSize != 24 || !cfg.CookieSecure || cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("KEEBSHOP_PAGE_SIZE", "twelve")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
