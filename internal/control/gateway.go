// Package control owns the gateway lifecycle: it wires the proxy adapter,
// rate limiter and HTTP server together and manages startup and shutdown.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/refdatahub/refgate/internal/core/config"
	"github.com/refdatahub/refgate/internal/proxy"
)

// Gateway is the running proxy application.
type Gateway struct {
	cfg    *config.AppConfig
	server *http.Server
	log    *slog.Logger
}

// NewGateway assembles the gateway from configuration.
func NewGateway(cfg *config.AppConfig) (*Gateway, error) {
	if len(cfg.Routes) == 0 {
		return nil, fmt.Errorf("no routes configured")
	}

	log := slog.Default()
	limits := proxy.NewStore(cfg.RateLimit.Requests, cfg.RateLimit.Window())
	adapter := proxy.NewAdapter(cfg.Backend.BaseURL, limits, log)

	return &Gateway{
		cfg: cfg,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           adapter.Router(cfg.Routes),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

// Start begins serving. It returns once the listener is running; serve
// errors after startup are logged, not returned.
func (g *Gateway) Start(ctx context.Context) error {
	g.log.Info("starting gateway",
		"port", g.cfg.Server.Port,
		"backend", g.cfg.Backend.BaseURL,
		"routes", len(g.cfg.Routes))

	errCh := make(chan error, 1)
	go func() {
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.log.Error("gateway server failed", "error", err)
			errCh <- err
		}
	}()

	// Give the listener a beat to fail fast on bind errors.
	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	g.log.Info("stopping gateway")
	return g.server.Shutdown(ctx)
}
