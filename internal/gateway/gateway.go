// ABOUTME: Gateway orchestrator wiring the Sonarr client, tool registry, OAuth, and MCP server
// ABOUTME: Manages the HTTP server lifecycle with graceful shutdown

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ZakiZtraki/mcp-sonarr/internal/auth"
	"github.com/ZakiZtraki/mcp-sonarr/internal/config"
	"github.com/ZakiZtraki/mcp-sonarr/internal/mcp"
	"github.com/ZakiZtraki/mcp-sonarr/internal/sonarr"
	"github.com/ZakiZtraki/mcp-sonarr/internal/tools"
)

// ServerName identifies this gateway in handshakes and health responses.
const ServerName = "mcp-sonarr"

// Version is the gateway release version.
const Version = "1.0.0"

// Gateway orchestrates the mcp-sonarr server components. It owns the HTTP
// server that carries the OAuth endpoints, the MCP transport, and the
// operational routes.
type Gateway struct {
	config     *config.Config
	sonarr     *sonarr.Client
	registry   *tools.Registry
	authority  *auth.Handler
	mcpServer  *mcp.Server
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	sonarrClient := sonarr.NewClient(sonarr.Config{
		URL:     cfg.Sonarr.URL,
		APIKey:  cfg.Sonarr.APIKey,
		Timeout: cfg.Sonarr.Timeout,
	})

	registry := tools.NewRegistry(logger.With("component", "tool-registry"))
	pack := tools.NewSonarrPack(sonarrClient)
	if err := pack.Register(registry); err != nil {
		return nil, fmt.Errorf("registering sonarr tools: %w", err)
	}

	authority, err := auth.NewHandler(cfg.OAuth, logger.With("component", "auth"))
	if err != nil {
		return nil, fmt.Errorf("creating auth handler: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry:   registry,
		Logger:     logger.With("component", "mcp"),
		ServerName: ServerName,
		Version:    Version,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	gw := &Gateway{
		config:    cfg,
		sonarr:    sonarrClient,
		registry:  registry,
		authority: authority,
		mcpServer: mcpServer,
		logger:    logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()

	// Operational endpoints - exempt from auth
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/info", gw.handleInfo)
	mux.HandleFunc("/debug/series", gw.handleDebugSeries)

	// OAuth endpoints
	authority.RegisterRoutes(mux)

	// MCP endpoint - gated by the bearer middleware wrapped around the mux
	mcpServer.RegisterRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           authority.Middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	gw.logAuthMode()

	return gw, nil
}

// logAuthMode records at startup how /mcp requests will be gated.
func (g *Gateway) logAuthMode() {
	switch {
	case g.config.OAuth.OAuthEnabled():
		g.logger.Info("OAuth authorization code flow enabled",
			"client_id", g.config.OAuth.ClientID,
			"token_ttl_minutes", g.config.OAuth.TokenTTLMinutes,
		)
		if g.config.OAuth.FallbackToken != "" {
			g.logger.Info("static bearer token also accepted")
		}
	case g.config.OAuth.FallbackToken != "":
		g.logger.Info("static bearer token auth enabled")
	default:
		g.logger.Warn("auth disabled - MCP endpoint is open")
	}
}

// Registry returns the tool registry, mainly for tests and the CLI.
func (g *Gateway) Registry() *tools.Registry {
	return g.registry
}

// Handler returns the root HTTP handler including auth middleware.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String(), "tools", g.registry.Count())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server, waiting for in-flight requests.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")
	if err := g.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
