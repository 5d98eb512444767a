package config

import (
	"time"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Routes    []RouteConfig   `yaml:"routes"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// BackendConfig holds settings for the upstream reference-data service.
// Durations are expressed in milliseconds, matching the request layer.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	Retries        int    `yaml:"retries"`
	RetryDelayMs   int    `yaml:"retry_delay_ms"`
	RetryOnTimeout *bool  `yaml:"retry_on_timeout"` // nil = default (true)
}

// Timeout returns the per-attempt budget. Zero or negative disables it.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

// RetryDelay returns the base backoff unit.
func (b BackendConfig) RetryDelay() time.Duration {
	return time.Duration(b.RetryDelayMs) * time.Millisecond
}

// TimeoutRetryEnabled resolves the tri-state flag with its default.
func (b BackendConfig) TimeoutRetryEnabled() bool {
	if b.RetryOnTimeout == nil {
		return true
	}
	return *b.RetryOnTimeout
}

// RateLimitConfig holds fixed-window limiter settings for the proxy.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

// Window returns the limiter window duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

// RouteConfig describes one proxied route.
type RouteConfig struct {
	// Path is the inbound route pattern, gin syntax (e.g. /api/clients/:id).
	Path string `yaml:"path"`
	// Methods lists accepted HTTP methods. Defaults to GET.
	Methods []string `yaml:"methods"`
	// Upstream is the backend path template. Defaults to Path.
	Upstream string `yaml:"upstream"`
	// TimeoutMs bounds the single forwarded attempt. Defaults to 8000.
	TimeoutMs int `yaml:"timeout_ms"`
	// NonCritical routes degrade to 200 + empty collection when the
	// backend is down instead of surfacing 503/504.
	NonCritical bool `yaml:"non_critical"`
	// Default404 is raw JSON substituted for a backend 404 when set.
	Default404 string `yaml:"default_404"`
	// RateLimited enables the per-caller fixed-window limiter.
	RateLimited bool `yaml:"rate_limited"`
}

// Timeout returns the forwarded-attempt budget.
func (r RouteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
