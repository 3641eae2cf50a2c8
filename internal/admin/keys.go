// ABOUTME: Admin handlers for issuing, listing and revoking API keys
// ABOUTME: The token is returned exactly once, at creation

package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/porterhq/porter-gateway/internal/auth"
	"github.com/porterhq/porter-gateway/internal/store"
)

// CreateKeyRequest is the JSON request body for POST /admin/profiles/{id}/keys.
type CreateKeyRequest struct {
	Name string `json:"name"`
}

// CreateKeyResponse carries the freshly minted token. It is never
// retrievable again.
type CreateKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	Prefix    string `json:"prefix"`
	CreatedAt string `json:"created_at"`
}

// KeyResponse is the listing shape of an API key. No secret material.
type KeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Prefix    string `json:"prefix"`
	CreatedAt string `json:"created_at"`
}

// handleProfileKeys handles /admin/profiles/{id}/keys (create and list).
func (s *Server) handleProfileKeys(w http.ResponseWriter, r *http.Request, profileID string) {
	p, err := s.store.GetProfile(r.Context(), profileID)
	if err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.createKey(w, r, p)
	case http.MethodGet:
		s.listKeys(w, r, p)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createKey(w http.ResponseWriter, r *http.Request, p *store.Profile) {
	var req CreateKeyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	// Prefix collisions are astronomically rare but cheap to retry
	for attempt := 0; attempt < 3; attempt++ {
		gen, err := auth.GenerateAPIKey()
		if err != nil {
			s.logger.Error("generating api key failed", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		k := &store.APIKey{
			ProjectID: p.ProjectID,
			Name:      req.Name,
			Prefix:    gen.Prefix,
			Salt:      gen.Salt,
			Hash:      gen.Hash,
		}
		err = s.store.CreateAPIKey(r.Context(), k)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			s.sendStoreError(w, err, "")
			return
		}

		s.logger.Info("issued api key", "id", k.ID, "project_id", p.ProjectID, "prefix", k.Prefix)
		s.sendJSON(w, http.StatusCreated, CreateKeyResponse{
			ID:        k.ID,
			Name:      k.Name,
			Token:     gen.Token,
			Prefix:    k.Prefix,
			CreatedAt: k.CreatedAt.Format(time.RFC3339),
		})
		return
	}

	s.logger.Error("api key prefix collisions exhausted retries", "project_id", p.ProjectID)
	s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) listKeys(w http.ResponseWriter, r *http.Request, p *store.Profile) {
	keys, err := s.store.ListAPIKeys(r.Context(), p.ProjectID)
	if err != nil {
		s.sendStoreError(w, err, "")
		return
	}

	resp := make([]KeyResponse, 0, len(keys))
	for _, k := range keys {
		resp = append(resp, KeyResponse{
			ID:        k.ID,
			Name:      k.Name,
			Prefix:    k.Prefix,
			CreatedAt: k.CreatedAt.Format(time.RFC3339),
		})
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// handleKeyByID handles DELETE /admin/keys/{id}.
func (s *Server) handleKeyByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	keyID := r.URL.Path[len("/admin/keys/"):]
	if keyID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	if err := s.store.DeleteAPIKey(r.Context(), keyID); err != nil {
		s.sendStoreError(w, err, "api key not found")
		return
	}

	s.logger.Info("revoked api key", "id", keyID)
	w.WriteHeader(http.StatusNoContent)
}
