package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "SITE_URL", "CONTENT_DIR", "DATABASE_URL", "SHUTDOWN_GRACE", "AUTH_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.ContentDir != "content/posts" {
		t.Fatalf("expected default content dir, got %q", cfg.ContentDir)
	}
	if cfg.ShutdownGrace != 10*time.Second {
		t.Fatalf("expected default shutdown grace, got %s", cfg.ShutdownGrace)
	}
	if cfg.HostedAuthEnabled() {
		t.Fatalf("expected hosted auth to be disabled without AUTH_URL")
	}
}

func TestLoadTrimsSiteURLAndDerivesListenAddr(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("SITE_URL", " https://blog.example.org/ ")
	t.Setenv("SHUTDOWN_GRACE", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.ListenAddr)
	}
	if cfg.SiteBaseURL != "https://blog.example.org" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SiteBaseURL)
	}
	if cfg.ShutdownGrace != 3*time.Second {
		t.Fatalf("expected 3s grace, got %s", cfg.ShutdownGrace)
	}
}

func TestLoadRejectsInvalidShutdownGrace(t *testing.T) {
	t.Setenv("SHUTDOWN_GRACE", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid SHUTDOWN_GRACE")
	}
}

func TestHostedAuthEnabledRequiresAllSettings(t *testing.T) {
	cfg := AppConfig{AuthURL: "https://auth.example.com", AuthAnonKey: "anon"}
	if cfg.HostedAuthEnabled() {
		t.Fatalf("expected hosted auth disabled without jwt secret")
	}

	cfg.AuthJWTSecret = "secret"
	if !cfg.HostedAuthEnabled() {
		t.Fatalf("expected hosted auth enabled")
	}
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Fatalf("expected no trusted proxies by default, got %v", cfg.TrustedProxies)
	}

	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, ,192.168.0.0/16 ")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if want := []string{"10.0.0.1", "192.168.0.0/16"}; !reflect.DeepEqual(cfg.TrustedProxies, want) {
		t.Fatalf("expected %v, got %v", want, cfg.TrustedProxies)
	}
}
