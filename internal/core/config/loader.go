package config

import (
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8084
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = ResolveBackendBase()
	}
	if cfg.Backend.TimeoutMs == 0 {
		cfg.Backend.TimeoutMs = 10000
	}
	if cfg.Backend.RetryDelayMs == 0 {
		cfg.Backend.RetryDelayMs = 1000
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.WindowSec == 0 {
		cfg.RateLimit.WindowSec = 60
	}
	for i := range cfg.Routes {
		if len(cfg.Routes[i].Methods) == 0 {
			cfg.Routes[i].Methods = []string{http.MethodGet}
		}
		if cfg.Routes[i].Upstream == "" {
			cfg.Routes[i].Upstream = cfg.Routes[i].Path
		}
		if cfg.Routes[i].TimeoutMs == 0 {
			cfg.Routes[i].TimeoutMs = 8000
		}
	}
}
