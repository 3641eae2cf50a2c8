// ABOUTME: Tests for API key generation and verification
// ABOUTME: Uses in-memory fake stores to cover every authentication outcome

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/porterhq/porter-gateway/internal/store"
)

// fakeKeyStore implements store.APIKeyStore over a map keyed by prefix.
type fakeKeyStore struct {
	byPrefix map[string]*store.APIKey
}

func (f *fakeKeyStore) CreateAPIKey(_ context.Context, k *store.APIKey) error {
	if _, ok := f.byPrefix[k.Prefix]; ok {
		return store.ErrDuplicate
	}
	f.byPrefix[k.Prefix] = k
	return nil
}

func (f *fakeKeyStore) GetAPIKeyByPrefix(_ context.Context, prefix string) (*store.APIKey, error) {
	k, ok := f.byPrefix[prefix]
	if !ok {
		return nil, store.ErrNotFound
	}
	return k, nil
}

func (f *fakeKeyStore) ListAPIKeys(_ context.Context, _ string) ([]*store.APIKey, error) {
	return nil, nil
}

func (f *fakeKeyStore) DeleteAPIKey(_ context.Context, _ string) error { return nil }

// fakeProfileStore implements store.ProfileStore keyed by project ID.
type fakeProfileStore struct {
	byProject map[string]*store.Profile
}

func (f *fakeProfileStore) CreateProfile(_ context.Context, _ *store.Profile) error { return nil }

func (f *fakeProfileStore) GetProfile(_ context.Context, _ string) (*store.Profile, error) {
	return nil, store.ErrNotFound
}

func (f *fakeProfileStore) GetProfileByProject(_ context.Context, projectID string) (*store.Profile, error) {
	p, ok := f.byProject[projectID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileStore) UpdateProfileCapabilities(_ context.Context, _ string, _, _, _ bool) error {
	return nil
}

func (f *fakeProfileStore) ListProfiles(_ context.Context) ([]*store.Profile, error) {
	return nil, nil
}

func (f *fakeProfileStore) DeleteProfile(_ context.Context, _ string) error { return nil }

func setupAuthenticator(t *testing.T) (*Authenticator, *fakeKeyStore, *fakeProfileStore) {
	t.Helper()
	keys := &fakeKeyStore{byPrefix: map[string]*store.APIKey{}}
	profiles := &fakeProfileStore{byProject: map[string]*store.Profile{}}
	return NewAuthenticator(keys, profiles, nil), keys, profiles
}

func issueKey(t *testing.T, keys *fakeKeyStore, projectID string) *GeneratedKey {
	t.Helper()
	gen, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	if err := keys.CreateAPIKey(context.Background(), &store.APIKey{
		ID:        "key-" + gen.Prefix,
		ProjectID: projectID,
		Prefix:    gen.Prefix,
		Salt:      gen.Salt,
		Hash:      gen.Hash,
	}); err != nil {
		t.Fatalf("CreateAPIKey() error = %v", err)
	}
	return gen
}

func TestGenerateAPIKey_Shape(t *testing.T) {
	gen, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}

	if !strings.HasPrefix(gen.Token, "pgk_") {
		t.Errorf("token %q missing pgk_ prefix", gen.Token)
	}
	body := strings.TrimPrefix(gen.Token, "pgk_")
	if len(body) != 48 {
		t.Errorf("token body length = %d, want 48", len(body))
	}
	if gen.Prefix != body[:8] {
		t.Errorf("prefix %q is not the first 8 chars of the body", gen.Prefix)
	}
	if strings.Contains(gen.Hash, body[8:]) {
		t.Error("hash leaks token material")
	}
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	a, err := GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	if a.Token == b.Token {
		t.Error("two generated tokens are identical")
	}
}

func TestAuthenticate_Success(t *testing.T) {
	a, keys, profiles := setupAuthenticator(t)
	profiles.byProject["project-1"] = &store.Profile{ID: "profile-1", ProjectID: "project-1"}
	gen := issueKey(t, keys, "project-1")

	profile, err := a.Authenticate(context.Background(), gen.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if profile.ID != "profile-1" {
		t.Errorf("profile.ID = %q, want profile-1", profile.ID)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	a, keys, profiles := setupAuthenticator(t)
	profiles.byProject["project-1"] = &store.Profile{ID: "profile-1", ProjectID: "project-1"}
	gen := issueKey(t, keys, "project-1")

	// A valid-looking token whose suffix is wrong
	tampered := gen.Token[:len(gen.Token)-1]
	if strings.HasSuffix(gen.Token, "0") {
		tampered += "1"
	} else {
		tampered += "0"
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"unknown prefix", "pgk_ffffffffffffffffffffffffffffffffffffffffffffffff", ErrUnauthenticated},
		{"wrong suffix", tampered, ErrUnauthenticated},
		{"missing scheme prefix", strings.TrimPrefix(gen.Token, "pgk_"), ErrInvalidCredentialFormat},
		{"too short", "pgk_abc", ErrInvalidCredentialFormat},
		{"empty", "", ErrInvalidCredentialFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate(%q) error = %v, want %v", tt.token, err, tt.wantErr)
			}
		})
	}
}

func TestAuthenticate_DeletedProfileIndistinguishable(t *testing.T) {
	a, keys, _ := setupAuthenticator(t)
	// Key exists but its project has no profile anymore
	gen := issueKey(t, keys, "project-gone")

	_, err := a.Authenticate(context.Background(), gen.Token)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate() error = %v, want ErrUnauthenticated", err)
	}
}
