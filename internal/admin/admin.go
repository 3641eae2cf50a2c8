// ABOUTME: Admin HTTP API server for managing profiles, connections and keys
// ABOUTME: JWT-authenticated; the only write path into the gateway's store

package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/porterhq/porter-gateway/internal/auth"
	"github.com/porterhq/porter-gateway/internal/runner"
	"github.com/porterhq/porter-gateway/internal/store"
	"github.com/porterhq/porter-gateway/internal/vault"
)

// Config holds the dependencies for the admin server.
type Config struct {
	Store       store.Store
	Vault       *vault.Vault
	Transformer *runner.Transformer
	Verifier    auth.TokenVerifier
	Logger      *slog.Logger
}

// Server serves the admin API under /admin/.
type Server struct {
	store       store.Store
	vault       *vault.Vault
	transformer *runner.Transformer
	verifier    auth.TokenVerifier
	logger      *slog.Logger
}

// New creates an admin Server from the given config.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:       cfg.Store,
		vault:       cfg.Vault,
		transformer: cfg.Transformer,
		verifier:    cfg.Verifier,
		logger:      logger.With("component", "admin"),
	}
}

// RegisterRoutes mounts the admin API onto the mux. Every route sits
// behind JWT authentication.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	requireAdmin := auth.RequireAdmin(s.verifier)

	mux.Handle("/admin/profiles", requireAdmin(http.HandlerFunc(s.handleProfiles)))
	mux.Handle("/admin/profiles/", requireAdmin(http.HandlerFunc(s.handleProfileSubtree)))
	mux.Handle("/admin/connections/", requireAdmin(http.HandlerFunc(s.handleConnectionSubtree)))
	mux.Handle("/admin/keys/", requireAdmin(http.HandlerFunc(s.handleKeyByID)))
}

// handleProfileSubtree routes /admin/profiles/{id}[/...] by hand.
func (s *Server) handleProfileSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/profiles/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	profileID := parts[0]
	switch {
	case len(parts) == 1:
		s.handleProfileByID(w, r, profileID)
	case len(parts) == 2 && parts[1] == "capabilities":
		s.handleProfileCapabilities(w, r, profileID)
	case len(parts) == 2 && parts[1] == "connections":
		s.handleProfileConnections(w, r, profileID)
	case len(parts) == 2 && parts[1] == "import":
		s.handleImport(w, r, profileID)
	case len(parts) == 2 && parts[1] == "keys":
		s.handleProfileKeys(w, r, profileID)
	default:
		s.sendJSONError(w, http.StatusNotFound, "unknown admin path")
	}
}

// handleConnectionSubtree routes /admin/connections/{id}[/...] by hand.
func (s *Server) handleConnectionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/connections/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	connectionID := parts[0]
	switch {
	case len(parts) == 1:
		s.handleConnectionByID(w, r, connectionID)
	case len(parts) == 2 && parts[1] == "status":
		s.handleConnectionStatus(w, r, connectionID)
	case len(parts) == 2 && parts[1] == "capabilities":
		s.handleConnectionCapabilities(w, r, connectionID)
	default:
		s.sendJSONError(w, http.StatusNotFound, "unknown admin path")
	}
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

// sendStoreError maps store errors to HTTP statuses.
func (s *Server) sendStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrDuplicate):
		s.sendJSONError(w, http.StatusConflict, "already exists")
	default:
		s.logger.Error("store operation failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a request body into v, rejecting unknown fields.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
