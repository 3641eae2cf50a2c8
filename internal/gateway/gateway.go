// ABOUTME: Core gateway wiring and HTTP server lifecycle
// ABOUTME: Assembles store, vault, resolver, transformer and auth into one server

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/porterhq/porter-gateway/internal/admin"
	"github.com/porterhq/porter-gateway/internal/auth"
	"github.com/porterhq/porter-gateway/internal/config"
	"github.com/porterhq/porter-gateway/internal/resolver"
	"github.com/porterhq/porter-gateway/internal/runner"
	"github.com/porterhq/porter-gateway/internal/store"
	"github.com/porterhq/porter-gateway/internal/vault"
)

// Gateway is the top-level server: it owns the store and serves both
// the resolution API and the admin API over one HTTP listener.
type Gateway struct {
	config      *config.Config
	logger      *slog.Logger
	store       *store.SQLiteStore
	vault       *vault.Vault
	resolver    *resolver.Resolver
	transformer *runner.Transformer
	auth        *auth.Authenticator
	httpServer  *http.Server
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	v, err := vault.New(cfg.Vault.MasterSecret, logger)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	installer := runner.NewExecInstaller(cfg.Runner.InstallDir, cfg.Runner.NpmBin, cfg.Runner.UvBin, logger)

	gw := &Gateway{
		config:      cfg,
		logger:      logger.With("component", "gateway"),
		store:       s,
		vault:       v,
		resolver:    resolver.New(s, logger),
		transformer: runner.NewTransformer(s, installer, logger),
		auth:        auth.NewAuthenticator(s, s, logger),
	}

	mux := http.NewServeMux()

	// Health endpoint - no auth required
	mux.HandleFunc("/healthz", gw.handleHealthz)

	gw.registerResolutionRoutes(mux)

	adminSrv := admin.New(admin.Config{
		Store:       s,
		Vault:       v,
		Transformer: gw.transformer,
		Verifier:    auth.NewJWTVerifier([]byte(cfg.Admin.JWTSecret)),
		Logger:      logger,
	})
	adminSrv.RegisterRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// registerResolutionRoutes mounts the API-key-authenticated resolution
// surface.
func (g *Gateway) registerResolutionRoutes(mux *http.ServeMux) {
	requireKey := auth.RequireAPIKey(g.auth)

	mux.Handle("/resolve/tool", requireKey(http.HandlerFunc(g.handleResolveTool)))
	mux.Handle("/resolve/prompt", requireKey(http.HandlerFunc(g.handleResolvePrompt)))
	mux.Handle("/resolve/resource", requireKey(http.HandlerFunc(g.handleResolveResource)))

	mux.Handle("/tools", requireKey(http.HandlerFunc(g.handleListTools)))
	mux.Handle("/prompts", requireKey(http.HandlerFunc(g.handleListPrompts)))
	mux.Handle("/resources", requireKey(http.HandlerFunc(g.handleListResources)))

	mux.Handle("/profile-capabilities", requireKey(http.HandlerFunc(g.handleProfileCapabilities)))
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails. Returns nil on graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
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
// Uses context.Background() intentionally since the original context is
// already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes the store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err := g.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	return firstErr
}
