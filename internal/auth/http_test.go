// ABOUTME: Tests for the HTTP authentication middleware
// ABOUTME: Covers header extraction, 401 paths and context propagation

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/porterhq/porter-gateway/internal/store"
)

func TestRequireAPIKey(t *testing.T) {
	a, keys, profiles := setupAuthenticator(t)
	profiles.byProject["project-1"] = &store.Profile{ID: "profile-1", ProjectID: "project-1"}
	gen := issueKey(t, keys, "project-1")

	var gotProfile *store.Profile
	handler := RequireAPIKey(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProfile = ProfileFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid key", "Bearer " + gen.Token, http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown key", "Bearer pgk_ffffffffffffffffffffffffffffffffffffffffffffffff", http.StatusUnauthorized},
		{"malformed key", "Bearer nonsense", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotProfile = nil
			req := httptest.NewRequest(http.MethodGet, "/resolve/prompt?name=x", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if gotProfile == nil || gotProfile.ID != "profile-1" {
					t.Errorf("handler saw profile %+v, want profile-1", gotProfile)
				}
			} else if gotProfile != nil {
				t.Error("handler ran despite failed auth")
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret"))
	token, err := v.Generate("admin@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := v.Generate("admin@example.com", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	var gotSubject string
	handler := RequireAdmin(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
		{"garbage", "Bearer garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(http.MethodGet, "/admin/profiles", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotSubject != "admin@example.com" {
				t.Errorf("subject = %q, want admin@example.com", gotSubject)
			}
		})
	}
}

func TestProfileContextHelpers(t *testing.T) {
	ctx := context.Background()

	if ProfileFromContext(ctx) != nil {
		t.Error("ProfileFromContext on empty context should return nil")
	}

	p := &store.Profile{ID: "profile-1"}
	ctx = WithProfile(ctx, p)
	if got := ProfileFromContext(ctx); got != p {
		t.Errorf("ProfileFromContext = %+v, want the attached profile", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustProfileFromContext should panic on empty context")
		}
	}()
	MustProfileFromContext(context.Background())
}
