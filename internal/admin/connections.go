// ABOUTME: Admin handlers for connection registration, detail and lifecycle
// ABOUTME: Run parameters are encrypted on the way in, decrypted only on detail

package admin

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/porterhq/porter-gateway/internal/store"
	"github.com/porterhq/porter-gateway/internal/vault"
)

// ConnectionParams is the plaintext run-parameter block accepted on
// registration and update.
type ConnectionParams struct {
	Command *string           `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     *string           `json:"url,omitempty"`
}

// CreateConnectionRequest is the JSON request body for
// POST /admin/profiles/{id}/connections.
type CreateConnectionRequest struct {
	Name        string           `json:"name"`
	Transport   string           `json:"transport"`
	Description string           `json:"description,omitempty"`
	Provenance  string           `json:"provenance,omitempty"`
	ExternalID  *string          `json:"external_id,omitempty"`
	Params      ConnectionParams `json:"params"`
}

// UpdateConnectionRequest is the JSON request body for
// PUT /admin/connections/{id}.
type UpdateConnectionRequest struct {
	Name        string           `json:"name"`
	Transport   string           `json:"transport"`
	Description string           `json:"description,omitempty"`
	Params      ConnectionParams `json:"params"`
}

// ConnectionResponse is the listing shape of a connection. It never
// carries run parameters, encrypted or otherwise.
type ConnectionResponse struct {
	ID          string `json:"id"`
	ProfileID   string `json:"profile_id"`
	Name        string `json:"name"`
	Transport   string `json:"transport"`
	Status      string `json:"status"`
	Provenance  string `json:"provenance"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ConnectionDetailResponse adds the decrypted parameters and rendered
// description for the single-connection view.
type ConnectionDetailResponse struct {
	ConnectionResponse
	Params          ConnectionParams        `json:"params"`
	DescriptionHTML string                  `json:"description_html,omitempty"`
	CapabilityRows  []CapabilityRowResponse `json:"capabilities"`
}

// CapabilityRowResponse is one capability row in the detail view.
type CapabilityRowResponse struct {
	Kind        string          `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema,omitempty"`
	Enabled     bool            `json:"enabled"`
}

// StatusRequest is the JSON request body for POST /admin/connections/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// ReplaceCapabilitiesRequest is the JSON request body for
// PUT /admin/connections/{id}/capabilities, the discovery write path.
type ReplaceCapabilitiesRequest struct {
	Capabilities []CapabilityRowResponse `json:"capabilities"`
}

func connectionResponse(c *store.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:          c.ID,
		ProfileID:   c.ProfileID,
		Name:        c.Name,
		Transport:   string(c.Transport),
		Status:      string(c.Status),
		Provenance:  string(c.Provenance),
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

// handleProfileConnections handles /admin/profiles/{id}/connections.
func (s *Server) handleProfileConnections(w http.ResponseWriter, r *http.Request, profileID string) {
	switch r.Method {
	case http.MethodPost:
		s.createConnection(w, r, profileID)
	case http.MethodGet:
		s.listConnections(w, r, profileID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createConnection(w http.ResponseWriter, r *http.Request, profileID string) {
	var req CreateConnectionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	transport := store.TransportKind(req.Transport)
	if !store.ValidTransport(transport) {
		s.sendJSONError(w, http.StatusBadRequest, "transport must be stdio, streamable_http or sse")
		return
	}

	// The profile must exist before we derive its key
	if _, err := s.store.GetProfile(r.Context(), profileID); err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}

	encCommand, encArgs, encEnv, encURL, err := s.vault.EncryptParams(profileID, vault.Params{
		Command: req.Params.Command,
		Args:    req.Params.Args,
		Env:     req.Params.Env,
		URL:     req.Params.URL,
	})
	if err != nil {
		s.logger.Error("encrypting connection params failed", "profile_id", profileID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	c := &store.Connection{
		ProfileID:   profileID,
		Name:        req.Name,
		Transport:   transport,
		Provenance:  store.Provenance(req.Provenance),
		ExternalID:  req.ExternalID,
		Description: req.Description,
		EncCommand:  encCommand,
		EncArgs:     encArgs,
		EncEnv:      encEnv,
		EncURL:      encURL,
	}
	if err := s.store.CreateConnection(r.Context(), c); err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}

	s.logger.Info("registered connection", "id", c.ID, "profile_id", profileID, "name", c.Name)
	s.sendJSON(w, http.StatusCreated, connectionResponse(c))
}

func (s *Server) listConnections(w http.ResponseWriter, r *http.Request, profileID string) {
	conns, err := s.store.ListConnections(r.Context(), profileID)
	if err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}

	resp := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		resp = append(resp, connectionResponse(c))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// handleConnectionByID handles /admin/connections/{id} (detail, update, delete).
func (s *Server) handleConnectionByID(w http.ResponseWriter, r *http.Request, connectionID string) {
	switch r.Method {
	case http.MethodGet:
		s.connectionDetail(w, r, connectionID)
	case http.MethodPut:
		s.updateConnection(w, r, connectionID)
	case http.MethodDelete:
		s.deleteConnection(w, r, connectionID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) connectionDetail(w http.ResponseWriter, r *http.Request, connectionID string) {
	c, err := s.store.GetConnection(r.Context(), connectionID)
	if err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}

	params, err := s.vault.DecryptConnection(c)
	if err != nil {
		s.logger.Error("decrypting connection failed", "connection_id", c.ID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	caps, err := s.store.ListConnectionCapabilities(r.Context(), connectionID)
	if err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}
	capRows := make([]CapabilityRowResponse, 0, len(caps))
	for _, cp := range caps {
		capRows = append(capRows, CapabilityRowResponse{
			Kind:        string(cp.Kind),
			Name:        cp.Name,
			Description: cp.Description,
			Schema:      cp.Schema,
			Enabled:     cp.Enabled,
		})
	}

	detail := ConnectionDetailResponse{
		ConnectionResponse: connectionResponse(c),
		Params: ConnectionParams{
			Command: params.Command,
			Args:    params.Args,
			Env:     params.Env,
			URL:     params.URL,
		},
		CapabilityRows: capRows,
	}
	if c.Description != "" {
		detail.DescriptionHTML = renderMarkdown(c.Description, s.logger)
	}

	s.sendJSON(w, http.StatusOK, detail)
}

func (s *Server) updateConnection(w http.ResponseWriter, r *http.Request, connectionID string) {
	var req UpdateConnectionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	transport := store.TransportKind(req.Transport)
	if !store.ValidTransport(transport) {
		s.sendJSONError(w, http.StatusBadRequest, "transport must be stdio, streamable_http or sse")
		return
	}

	c, err := s.store.GetConnection(r.Context(), connectionID)
	if err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}

	encCommand, encArgs, encEnv, encURL, err := s.vault.EncryptParams(c.ProfileID, vault.Params{
		Command: req.Params.Command,
		Args:    req.Params.Args,
		Env:     req.Params.Env,
		URL:     req.Params.URL,
	})
	if err != nil {
		s.logger.Error("encrypting connection params failed", "connection_id", connectionID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	c.Name = req.Name
	c.Transport = transport
	c.Description = req.Description
	c.EncCommand = encCommand
	c.EncArgs = encArgs
	c.EncEnv = encEnv
	c.EncURL = encURL

	if err := s.store.UpdateConnectionParams(r.Context(), c); err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}

	// New parameters may name a different package; the cached install is
	// stale either way.
	if err := s.transformer.Invalidate(r.Context(), connectionID); err != nil {
		s.logger.Warn("failed to invalidate install record", "connection_id", connectionID, "error", err)
	}

	s.logger.Info("updated connection", "id", connectionID)
	s.sendJSON(w, http.StatusOK, connectionResponse(c))
}

func (s *Server) deleteConnection(w http.ResponseWriter, r *http.Request, connectionID string) {
	if err := s.store.DeleteConnection(r.Context(), connectionID); err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}
	s.logger.Info("deleted connection", "id", connectionID)
	w.WriteHeader(http.StatusNoContent)
}

// handleConnectionStatus handles POST /admin/connections/{id}/status.
func (s *Server) handleConnectionStatus(w http.ResponseWriter, r *http.Request, connectionID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req StatusRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	status := store.ConnectionStatus(req.Status)
	if status != store.ConnectionActive && status != store.ConnectionInactive {
		s.sendJSONError(w, http.StatusBadRequest, "status must be ACTIVE or INACTIVE")
		return
	}

	if err := s.store.SetConnectionStatus(r.Context(), connectionID, status); err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}

	s.logger.Info("updated connection status", "id", connectionID, "status", status)
	w.WriteHeader(http.StatusNoContent)
}

// handleConnectionCapabilities handles PUT /admin/connections/{id}/capabilities.
// This is how discovered capabilities enter the system: the caller runs
// discovery against the backend out of band and posts the result here.
func (s *Server) handleConnectionCapabilities(w http.ResponseWriter, r *http.Request, connectionID string) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ReplaceCapabilitiesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if _, err := s.store.GetConnection(r.Context(), connectionID); err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}

	caps := make([]*store.Capability, 0, len(req.Capabilities))
	for _, row := range req.Capabilities {
		kind := store.CapabilityKind(row.Kind)
		if !store.ValidCapabilityKind(kind) {
			s.sendJSONError(w, http.StatusBadRequest, "unknown capability kind "+row.Kind)
			return
		}
		if row.Name == "" {
			s.sendJSONError(w, http.StatusBadRequest, "capability name is required")
			return
		}
		caps = append(caps, &store.Capability{
			Kind:        kind,
			Name:        row.Name,
			Description: row.Description,
			Schema:      row.Schema,
			Enabled:     row.Enabled,
		})
	}

	if err := s.store.ReplaceCapabilities(r.Context(), connectionID, caps); err != nil {
		s.sendStoreError(w, err, "connection not found")
		return
	}

	s.logger.Info("replaced connection capabilities", "id", connectionID, "count", len(caps))
	w.WriteHeader(http.StatusNoContent)
}

// renderMarkdown converts a connection description to HTML for the
// detail view. Failures degrade to empty output, never an error.
func renderMarkdown(src string, logger *slog.Logger) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		logger.Warn("failed to render description markdown", "error", err)
		return ""
	}
	return buf.String()
}
