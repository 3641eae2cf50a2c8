// ABOUTME: Tests for the credential vault
// ABOUTME: Covers round-trips, nil-field preservation, tamper and cross-profile failures

package vault

import (
	"errors"
	"strings"
	"testing"

	"github.com/porterhq/porter-gateway/internal/store"
)

const testSecret = "test-master-secret-0123456789"

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(testSecret, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v
}

func strPtr(s string) *string { return &s }

func TestNew_RejectsShortSecret(t *testing.T) {
	if _, err := New("short", nil); err == nil {
		t.Error("expected error for short master secret")
	}
}

func TestEncryptDecryptField(t *testing.T) {
	v := newTestVault(t)

	ct, err := v.EncryptField("profile-1", []byte("npx"))
	if err != nil {
		t.Fatalf("EncryptField() error = %v", err)
	}
	if !strings.HasPrefix(ct, "v1:") {
		t.Errorf("ciphertext missing version prefix: %q", ct)
	}
	if strings.Contains(ct, "npx") {
		t.Error("ciphertext contains plaintext")
	}

	pt, err := v.DecryptField("profile-1", ct)
	if err != nil {
		t.Fatalf("DecryptField() error = %v", err)
	}
	if string(pt) != "npx" {
		t.Errorf("round-trip = %q, want %q", pt, "npx")
	}
}

func TestEncryptField_NonDeterministic(t *testing.T) {
	v := newTestVault(t)

	a, err := v.EncryptField("profile-1", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := v.EncryptField("profile-1", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same plaintext produced identical ciphertext")
	}
}

func TestDecryptField_CrossProfileFails(t *testing.T) {
	v := newTestVault(t)

	ct, err := v.EncryptField("profile-1", []byte("secret-token"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.DecryptField("profile-2", ct); !errors.Is(err, ErrDecrypt) {
		t.Errorf("cross-profile decrypt error = %v, want ErrDecrypt", err)
	}
}

func TestDecryptField_WrongMasterSecret(t *testing.T) {
	v := newTestVault(t)
	ct, err := v.EncryptField("profile-1", []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	other, err := New("another-master-secret-xyz", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.DecryptField("profile-1", ct); !errors.Is(err, ErrDecrypt) {
		t.Errorf("decrypt with wrong secret error = %v, want ErrDecrypt", err)
	}
}

func TestDecryptField_Malformed(t *testing.T) {
	v := newTestVault(t)

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"empty", ""},
		{"no prefix", "bm90LWEtY2lwaGVydGV4dA=="},
		{"bad base64", "v1:!!!not-base64!!!"},
		{"too short", "v1:AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.DecryptField("profile-1", tt.ciphertext); !errors.Is(err, ErrDecrypt) {
				t.Errorf("DecryptField(%q) error = %v, want ErrDecrypt", tt.ciphertext, err)
			}
		})
	}
}

func TestDecryptField_Tampered(t *testing.T) {
	v := newTestVault(t)

	ct, err := v.EncryptField("profile-1", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	// Flip a character in the base64 body
	body := []byte(ct)
	last := len(body) - 1
	if body[last] == 'A' {
		body[last] = 'B'
	} else {
		body[last] = 'A'
	}

	if _, err := v.DecryptField("profile-1", string(body)); !errors.Is(err, ErrDecrypt) {
		t.Errorf("tampered decrypt error = %v, want ErrDecrypt", err)
	}
}

func TestParamsRoundTrip(t *testing.T) {
	v := newTestVault(t)

	p := Params{
		Command: strPtr("npx"),
		Args:    []string{"-y", "@scope/server@1.2.3", "/data"},
		Env:     map[string]string{"API_TOKEN": "tok-123", "DEBUG": "1"},
		URL:     nil,
	}

	encCommand, encArgs, encEnv, encURL, err := v.EncryptParams("profile-1", p)
	if err != nil {
		t.Fatalf("EncryptParams() error = %v", err)
	}
	if encCommand == nil || encArgs == nil || encEnv == nil {
		t.Fatal("present fields encrypted to nil")
	}
	if encURL != nil {
		t.Error("absent URL encrypted to non-nil")
	}

	conn := &store.Connection{
		ID:         "conn-1",
		ProfileID:  "profile-1",
		EncCommand: encCommand,
		EncArgs:    encArgs,
		EncEnv:     encEnv,
		EncURL:     encURL,
	}

	got, err := v.DecryptConnection(conn)
	if err != nil {
		t.Fatalf("DecryptConnection() error = %v", err)
	}
	if got.Command == nil || *got.Command != "npx" {
		t.Errorf("Command = %v, want npx", got.Command)
	}
	if len(got.Args) != 3 || got.Args[2] != "/data" {
		t.Errorf("Args = %v", got.Args)
	}
	if got.Env["API_TOKEN"] != "tok-123" {
		t.Errorf("Env = %v", got.Env)
	}
	if got.URL != nil {
		t.Errorf("URL = %v, want nil", got.URL)
	}
}

func TestParamsRoundTrip_AllAbsent(t *testing.T) {
	v := newTestVault(t)

	encCommand, encArgs, encEnv, encURL, err := v.EncryptParams("profile-1", Params{})
	if err != nil {
		t.Fatal(err)
	}
	if encCommand != nil || encArgs != nil || encEnv != nil || encURL != nil {
		t.Error("absent fields must stay nil")
	}

	got, err := v.DecryptConnection(&store.Connection{ID: "c", ProfileID: "profile-1"})
	if err != nil {
		t.Fatalf("DecryptConnection() error = %v", err)
	}
	if got.Command != nil || got.Args != nil || got.Env != nil || got.URL != nil {
		t.Errorf("all-absent round-trip = %+v, want zero Params", got)
	}
}

func TestParamsRoundTrip_EmptyButPresent(t *testing.T) {
	v := newTestVault(t)

	p := Params{Args: []string{}, Env: map[string]string{}}
	_, encArgs, encEnv, _, err := v.EncryptParams("profile-1", p)
	if err != nil {
		t.Fatal(err)
	}
	if encArgs == nil || encEnv == nil {
		t.Fatal("empty-but-present fields must encrypt to real ciphertext")
	}

	got, err := v.DecryptConnection(&store.Connection{
		ID: "c", ProfileID: "profile-1", EncArgs: encArgs, EncEnv: encEnv,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Args == nil || len(got.Args) != 0 {
		t.Errorf("Args = %v, want empty non-nil", got.Args)
	}
	if got.Env == nil || len(got.Env) != 0 {
		t.Errorf("Env = %v, want empty non-nil", got.Env)
	}
}

func TestDecryptConnection_URLOnly(t *testing.T) {
	v := newTestVault(t)

	encCommand, encArgs, encEnv, encURL, err := v.EncryptParams("profile-1", Params{
		URL: strPtr("https://mcp.example.com/stream"),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := v.DecryptConnection(&store.Connection{
		ID: "c", ProfileID: "profile-1",
		EncCommand: encCommand, EncArgs: encArgs, EncEnv: encEnv, EncURL: encURL,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.URL == nil || *got.URL != "https://mcp.example.com/stream" {
		t.Errorf("URL = %v", got.URL)
	}
	if got.Command != nil {
		t.Errorf("Command = %v, want nil", got.Command)
	}
}
