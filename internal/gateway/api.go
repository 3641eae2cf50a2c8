// ABOUTME: HTTP handlers for the capability resolution surface
// ABOUTME: Resolves names to decrypted, transformed connection parameters

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/porterhq/porter-gateway/internal/auth"
	"github.com/porterhq/porter-gateway/internal/resolver"
	"github.com/porterhq/porter-gateway/internal/runner"
	"github.com/porterhq/porter-gateway/internal/store"
	"github.com/porterhq/porter-gateway/internal/vault"
)

// ResolveResponse is the JSON response for GET /resolve/* endpoints.
// Command/args/env are set for stdio connections, url for HTTP ones.
type ResolveResponse struct {
	UUID    string            `json:"uuid"`
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
	URL     string            `json:"url,omitempty"`
}

// CapabilityInfo is one entry in the JSON response for the listing
// endpoints.
type CapabilityInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema,omitempty"`
	UUID        string          `json:"uuid"`
}

// ProfileCapabilitiesResponse is the JSON response for GET /profile-capabilities.
type ProfileCapabilitiesResponse struct {
	Tools     bool `json:"tools"`
	Prompts   bool `json:"prompts"`
	Resources bool `json:"resources"`
}

func (g *Gateway) handleResolveTool(w http.ResponseWriter, r *http.Request) {
	g.handleResolve(w, r, store.KindTool, "name")
}

func (g *Gateway) handleResolvePrompt(w http.ResponseWriter, r *http.Request) {
	g.handleResolve(w, r, store.KindPrompt, "name")
}

func (g *Gateway) handleResolveResource(w http.ResponseWriter, r *http.Request) {
	g.handleResolve(w, r, store.KindResource, "uri")
}

// handleResolve is the shared implementation behind the three resolve
// endpoints. The capability kinds differ only in which query parameter
// carries the identifier.
func (g *Gateway) handleResolve(w http.ResponseWriter, r *http.Request, kind store.CapabilityKind, param string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	nameOrURI := r.URL.Query().Get(param)
	if nameOrURI == "" {
		g.sendJSONError(w, http.StatusBadRequest, param+" query parameter is required")
		return
	}

	profile := auth.MustProfileFromContext(r.Context())

	owner, err := g.resolver.Resolve(r.Context(), profile, kind, nameOrURI)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, string(kind)+" not found")
			return
		}
		g.logger.Error("resolution failed", "kind", kind, "name", nameOrURI, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	params, err := g.vault.DecryptConnection(&owner.Connection)
	if err != nil {
		// Never surface cipher details; the operator sees the log, the
		// caller sees an opaque failure.
		g.logger.Error("decrypting connection failed", "connection_id", owner.Connection.ID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	params, err = g.transformer.Transform(r.Context(), owner.Connection.ID, params)
	if err != nil {
		if errors.Is(err, runner.ErrInstallFailed) {
			g.logger.Error("package install failed during resolution", "connection_id", owner.Connection.ID, "error", err)
		} else {
			g.logger.Error("command transformation failed", "connection_id", owner.Connection.ID, "error", err)
		}
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.sendJSON(w, http.StatusOK, buildResolveResponse(owner, params))
}

// buildResolveResponse flattens an owner plus its plaintext parameters
// into the wire shape. Args and env are always present, never null.
func buildResolveResponse(owner *store.CapabilityOwner, params vault.Params) ResolveResponse {
	resp := ResolveResponse{
		UUID: owner.Connection.ID,
		Name: owner.Capability.Name,
		Type: string(owner.Connection.Transport),
		Args: []string{},
		Env:  map[string]string{},
	}
	if params.Command != nil {
		resp.Command = *params.Command
	}
	if params.Args != nil {
		resp.Args = params.Args
	}
	if params.Env != nil {
		resp.Env = params.Env
	}
	if params.URL != nil {
		resp.URL = *params.URL
	}
	return resp
}

func (g *Gateway) handleListTools(w http.ResponseWriter, r *http.Request) {
	g.handleList(w, r, store.KindTool)
}

func (g *Gateway) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	g.handleList(w, r, store.KindPrompt)
}

func (g *Gateway) handleListResources(w http.ResponseWriter, r *http.Request) {
	g.handleList(w, r, store.KindResource)
}

// handleList returns every resolvable capability of one kind for the
// authenticated profile. Collisions are not deduplicated; the first
// entry for a name is the one Resolve would pick.
func (g *Gateway) handleList(w http.ResponseWriter, r *http.Request, kind store.CapabilityKind) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	profile := auth.MustProfileFromContext(r.Context())

	owners, err := g.resolver.ListForProfile(r.Context(), profile, kind)
	if err != nil {
		g.logger.Error("listing capabilities failed", "kind", kind, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	infos := make([]CapabilityInfo, 0, len(owners))
	for _, o := range owners {
		infos = append(infos, CapabilityInfo{
			Name:        o.Capability.Name,
			Description: o.Capability.Description,
			Schema:      o.Capability.Schema,
			UUID:        o.Connection.ID,
		})
	}

	g.sendJSON(w, http.StatusOK, infos)
}

func (g *Gateway) handleProfileCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	profile := auth.MustProfileFromContext(r.Context())

	g.sendJSON(w, http.StatusOK, ProfileCapabilitiesResponse{
		Tools:     profile.EnableTools,
		Prompts:   profile.EnablePrompts,
		Resources: profile.EnableResources,
	})
}

func (g *Gateway) handleHealthz(w http.ResponseWriter, r *http.Request) {
	g.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sendJSON writes a JSON response with the given status.
func (g *Gateway) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	g.sendJSON(w, status, map[string]string{"error": message})
}
