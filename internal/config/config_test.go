package config

import "testing"

func TestHasBasicAuth(t *testing.T) {
	cfg := &Config{}
	if cfg.HasBasicAuth() {
		t.Error("HasBasicAuth() = true for empty config")
	}

	cfg.Username = "admin"
	if cfg.HasBasicAuth() {
		t.Error("HasBasicAuth() = true without password")
	}

	cfg.Password = "secret"
	if !cfg.HasBasicAuth() {
		t.Error("HasBasicAuth() = false with both set")
	}
}

func TestParseHeaders(t *testing.T) {
	cfg := &Config{Headers: []string{
		"X-Custom-Suite: sales",
		"Accept-Language:de",
	}}
	if err := cfg.ParseHeaders(); err != nil {
		t.Fatalf("ParseHeaders() error = %v", err)
	}
	if cfg.ParsedHeaders["X-Custom-Suite"] != "sales" {
		t.Errorf("X-Custom-Suite = %q", cfg.ParsedHeaders["X-Custom-Suite"])
	}
	if cfg.ParsedHeaders["Accept-Language"] != "de" {
		t.Errorf("Accept-Language = %q", cfg.ParsedHeaders["Accept-Language"])
	}
}

func TestParseHeadersInvalid(t *testing.T) {
	for _, raw := range []string{"no-colon-here", ": empty name"} {
		cfg := &Config{Headers: []string{raw}}
		if err := cfg.ParseHeaders(); err == nil {
			t.Errorf("ParseHeaders(%q) = nil, want error", raw)
		}
	}
}

func TestParseHeadersEmpty(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ParseHeaders(); err != nil {
		t.Fatalf("ParseHeaders() error = %v", err)
	}
	if cfg.ParsedHeaders != nil {
		t.Errorf("ParsedHeaders = %v, want nil", cfg.ParsedHeaders)
	}
}
