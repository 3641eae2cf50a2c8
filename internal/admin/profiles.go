// ABOUTME: Admin handlers for profile CRUD and capability toggles
// ABOUTME: Profiles are the tenant unit; one per project

package admin

import (
	"net/http"
	"time"

	"github.com/porterhq/porter-gateway/internal/store"
)

// CreateProfileRequest is the JSON request body for POST /admin/profiles.
type CreateProfileRequest struct {
	ProjectID       string `json:"project_id"`
	EnableTools     *bool  `json:"enable_tools,omitempty"`
	EnablePrompts   *bool  `json:"enable_prompts,omitempty"`
	EnableResources *bool  `json:"enable_resources,omitempty"`
}

// ProfileResponse is the JSON shape of a profile.
type ProfileResponse struct {
	ID              string `json:"id"`
	ProjectID       string `json:"project_id"`
	EnableTools     bool   `json:"enable_tools"`
	EnablePrompts   bool   `json:"enable_prompts"`
	EnableResources bool   `json:"enable_resources"`
	CreatedAt       string `json:"created_at"`
}

// UpdateCapabilitiesRequest is the JSON request body for
// PUT /admin/profiles/{id}/capabilities.
type UpdateCapabilitiesRequest struct {
	EnableTools     bool `json:"enable_tools"`
	EnablePrompts   bool `json:"enable_prompts"`
	EnableResources bool `json:"enable_resources"`
}

func profileResponse(p *store.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID,
		ProjectID:       p.ProjectID,
		EnableTools:     p.EnableTools,
		EnablePrompts:   p.EnablePrompts,
		EnableResources: p.EnableResources,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}

// handleProfiles handles /admin/profiles (create and list).
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createProfile(w, r)
	case http.MethodGet:
		s.listProfiles(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	// All kinds default to enabled; the toggles exist to narrow
	p := &store.Profile{
		ProjectID:       req.ProjectID,
		EnableTools:     true,
		EnablePrompts:   true,
		EnableResources: true,
	}
	if req.EnableTools != nil {
		p.EnableTools = *req.EnableTools
	}
	if req.EnablePrompts != nil {
		p.EnablePrompts = *req.EnablePrompts
	}
	if req.EnableResources != nil {
		p.EnableResources = *req.EnableResources
	}

	if err := s.store.CreateProfile(r.Context(), p); err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}

	s.logger.Info("created profile", "id", p.ID, "project_id", p.ProjectID)
	s.sendJSON(w, http.StatusCreated, profileResponse(p))
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles(r.Context())
	if err != nil {
		s.sendStoreError(w, err, "")
		return
	}

	resp := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, profileResponse(p))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// handleProfileByID handles /admin/profiles/{id} (get and delete).
func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request, profileID string) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.store.GetProfile(r.Context(), profileID)
		if err != nil {
			s.sendStoreError(w, err, "profile not found")
			return
		}
		s.sendJSON(w, http.StatusOK, profileResponse(p))

	case http.MethodDelete:
		if err := s.store.DeleteProfile(r.Context(), profileID); err != nil {
			s.sendStoreError(w, err, "profile not found")
			return
		}
		s.logger.Info("deleted profile", "id", profileID)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleProfileCapabilities handles PUT /admin/profiles/{id}/capabilities.
func (s *Server) handleProfileCapabilities(w http.ResponseWriter, r *http.Request, profileID string) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req UpdateCapabilitiesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.store.UpdateProfileCapabilities(r.Context(), profileID,
		req.EnableTools, req.EnablePrompts, req.EnableResources); err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}

	s.logger.Info("updated profile capabilities", "id", profileID,
		"tools", req.EnableTools, "prompts", req.EnablePrompts, "resources", req.EnableResources)

	p, err := s.store.GetProfile(r.Context(), profileID)
	if err != nil {
		s.sendStoreError(w, err, "profile not found")
		return
	}
	s.sendJSON(w, http.StatusOK, profileResponse(p))
}
