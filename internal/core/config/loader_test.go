package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad_EnvSubstitution(t *testing.T) {
	os.Setenv("TEST_BACKEND_URL", "http://backend.internal:9090")
	defer os.Unsetenv("TEST_BACKEND_URL")

	path := writeTempConfig(t, `
backend:
  base_url: ${TEST_BACKEND_URL}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://backend.internal:9090" {
		t.Errorf("BaseURL = %s, want http://backend.internal:9090", cfg.Backend.BaseURL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `
routes:
  - path: /api/clients
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("Port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Backend.TimeoutMs != 10000 || cfg.Backend.RetryDelayMs != 1000 {
		t.Errorf("backend defaults = %d/%d, want 10000/1000", cfg.Backend.TimeoutMs, cfg.Backend.RetryDelayMs)
	}
	if !cfg.Backend.TimeoutRetryEnabled() {
		t.Error("TimeoutRetryEnabled default = false, want true")
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.WindowSec != 60 {
		t.Errorf("rate limit defaults = %d/%d, want 100/60", cfg.RateLimit.Requests, cfg.RateLimit.WindowSec)
	}

	route := cfg.Routes[0]
	if route.Upstream != "/api/clients" {
		t.Errorf("Upstream = %s, want /api/clients", route.Upstream)
	}
	if len(route.Methods) != 1 || route.Methods[0] != "GET" {
		t.Errorf("Methods = %v, want [GET]", route.Methods)
	}
	if route.TimeoutMs != 8000 {
		t.Errorf("TimeoutMs = %d, want 8000", route.TimeoutMs)
	}
}

func TestLoad_TimeoutRetryOptOut(t *testing.T) {
	path := writeTempConfig(t, `
backend:
  retry_on_timeout: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.TimeoutRetryEnabled() {
		t.Error("TimeoutRetryEnabled = true, want explicit opt-out honored")
	}
}

func TestResolveBackendBase_EnvOverride(t *testing.T) {
	os.Setenv(EnvBackendURL, "http://override:7070")
	defer os.Unsetenv(EnvBackendURL)

	if got := ResolveBackendBase(); got != "http://override:7070" {
		t.Errorf("ResolveBackendBase = %s, want env override", got)
	}
}
