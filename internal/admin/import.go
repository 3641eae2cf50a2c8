// ABOUTME: Bulk connection import from a TOML registry file
// ABOUTME: Imported entries carry registry provenance and their source ID

package admin

import (
	"net/http"

	"github.com/BurntSushi/toml"

	"github.com/porterhq/porter-gateway/internal/store"
	"github.com/porterhq/porter-gateway/internal/vault"
)

// registryFile is the TOML document accepted by the import endpoint.
//
//	[[servers]]
//	id = "registry.example/filesystem"
//	name = "filesystem"
//	transport = "stdio"
//	command = "npx"
//	args = ["-y", "@modelcontextprotocol/server-filesystem", "/data"]
//	description = "Filesystem access"
//
//	[servers.env]
//	LOG_LEVEL = "info"
type registryFile struct {
	Servers []registryServer `toml:"servers"`
}

type registryServer struct {
	ID          string            `toml:"id"`
	Name        string            `toml:"name"`
	Transport   string            `toml:"transport"`
	Command     string            `toml:"command"`
	Args        []string          `toml:"args"`
	Env         map[string]string `toml:"env"`
	URL         string            `toml:"url"`
	Description string            `toml:"description"`
}

// ImportResponse reports the outcome of a registry import.
type ImportResponse struct {
	Imported []ConnectionResponse `json:"imported"`
	Skipped  []string             `json:"skipped"`
}

// handleImport handles POST /admin/profiles/{id}/import. The request
// body is a TOML registry file; each listed server becomes a connection
// with registry provenance. Entries whose name already exists for the
// profile are skipped, not overwritten.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, profileID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, err := s.store.GetProfile(r.Context(), profileID); err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}

	var reg registryFile
	if _, err := toml.NewDecoder(r.Body).Decode(&reg); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid TOML body")
		return
	}
	if len(reg.Servers) == 0 {
		s.sendJSONError(w, http.StatusBadRequest, "no servers in registry file")
		return
	}

	existing, err := s.store.ListConnections(r.Context(), profileID)
	if err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}
	existingNames := make(map[string]bool, len(existing))
	for _, c := range existing {
		existingNames[c.Name] = true
	}

	resp := ImportResponse{Imported: []ConnectionResponse{}, Skipped: []string{}}

	for _, srv := range reg.Servers {
		if srv.Name == "" {
			s.sendJSONError(w, http.StatusBadRequest, "registry entry missing name")
			return
		}
		transport := store.TransportKind(srv.Transport)
		if !store.ValidTransport(transport) {
			s.sendJSONError(w, http.StatusBadRequest, "registry entry "+srv.Name+" has invalid transport")
			return
		}

		if existingNames[srv.Name] {
			resp.Skipped = append(resp.Skipped, srv.Name)
			continue
		}

		params := vault.Params{Args: srv.Args, Env: srv.Env}
		if srv.Command != "" {
			cmd := srv.Command
			params.Command = &cmd
		}
		if srv.URL != "" {
			u := srv.URL
			params.URL = &u
		}

		encCommand, encArgs, encEnv, encURL, err := s.vault.EncryptParams(profileID, params)
		if err != nil {
			s.logger.Error("encrypting imported params failed", "profile_id", profileID, "name", srv.Name, "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		c := &store.Connection{
			ProfileID:   profileID,
			Name:        srv.Name,
			Transport:   transport,
			Provenance:  store.ProvenanceRegistry,
			Description: srv.Description,
			EncCommand:  encCommand,
			EncArgs:     encArgs,
			EncEnv:      encEnv,
			EncURL:      encURL,
		}
		if srv.ID != "" {
			id := srv.ID
			c.ExternalID = &id
		}

		if err := s.store.CreateConnection(r.Context(), c); err != nil {
			s.sendStoreError(w, err, "profile not found")
			return
		}
		existingNames[srv.Name] = true
		resp.Imported = append(resp.Imported, connectionResponse(c))
	}

	s.logger.Info("imported registry servers", "profile_id", profileID,
		"imported", len(resp.Imported), "skipped", len(resp.Skipped))
	s.sendJSON(w, http.StatusOK, resp)
}
