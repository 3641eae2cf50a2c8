// ABOUTME: End-to-end tests for the resolution API
// ABOUTME: Seeds a real store through the vault and drives the HTTP surface

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/porterhq/porter-gateway/internal/auth"
	"github.com/porterhq/porter-gateway/internal/config"
	"github.com/porterhq/porter-gateway/internal/store"
	"github.com/porterhq/porter-gateway/internal/vault"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type gatewayHarness struct {
	gw     *Gateway
	server *httptest.Server
	token  string
}

func setupGateway(t *testing.T) *gatewayHarness {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Database.Path = filepath.Join(dir, "gateway.db")
	cfg.Vault.MasterSecret = "test-master-secret-0123456789"
	cfg.Admin.JWTSecret = "admin-test-secret"
	cfg.Runner.InstallDir = filepath.Join(dir, "installs")
	cfg.Runner.NpmBin = "npm"
	cfg.Runner.UvBin = "uv"

	gw, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = gw.store.Close() })

	ts := httptest.NewServer(gw.httpServer.Handler)
	t.Cleanup(ts.Close)

	h := &gatewayHarness{gw: gw, server: ts}
	h.seed(t)
	return h
}

// seed creates a profile with one active connection exposing a prompt,
// a tool and a resource, plus an API key for requests.
func (h *gatewayHarness) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	p := &store.Profile{
		ProjectID:       "project-1",
		EnableTools:     true,
		EnablePrompts:   true,
		EnableResources: true,
	}
	if err := h.gw.store.CreateProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	cmd := "/usr/local/bin/server"
	encCommand, encArgs, encEnv, encURL, err := h.gw.vault.EncryptParams(p.ID, vault.Params{
		Command: &cmd,
		Args:    []string{"--stdio", "/data"},
		Env:     map[string]string{"API_TOKEN": "tok-123"},
	})
	if err != nil {
		t.Fatal(err)
	}

	conn := &store.Connection{
		ProfileID:  p.ID,
		Name:       "main",
		Transport:  store.TransportStdio,
		EncCommand: encCommand,
		EncArgs:    encArgs,
		EncEnv:     encEnv,
		EncURL:     encURL,
	}
	if err := h.gw.store.CreateConnection(ctx, conn); err != nil {
		t.Fatal(err)
	}

	if err := h.gw.store.ReplaceCapabilities(ctx, conn.ID, []*store.Capability{
		{Kind: store.KindPrompt, Name: "summarize", Description: "Summarize text", Enabled: true},
		{Kind: store.KindTool, Name: "search", Enabled: true},
		{Kind: store.KindResource, Name: "file:///docs/readme.md", Enabled: true},
	}); err != nil {
		t.Fatal(err)
	}

	gen, err := auth.GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	if err := h.gw.store.CreateAPIKey(ctx, &store.APIKey{
		ProjectID: "project-1",
		Name:      "test",
		Prefix:    gen.Prefix,
		Salt:      gen.Salt,
		Hash:      gen.Hash,
	}); err != nil {
		t.Fatal(err)
	}
	h.token = gen.Token
}

func (h *gatewayHarness) get(t *testing.T, path string, out any) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, h.server.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.server.Client().Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decoding %s response %q: %v", path, data, err)
		}
	}
	return resp
}

func TestResolvePrompt(t *testing.T) {
	h := setupGateway(t)

	var r ResolveResponse
	resp := h.get(t, "/resolve/prompt?name=summarize", &r)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if r.Name != "summarize" || r.Type != "stdio" {
		t.Errorf("response = %+v", r)
	}
	if r.Command != "/usr/local/bin/server" {
		t.Errorf("Command = %q", r.Command)
	}
	if len(r.Args) != 2 || r.Args[1] != "/data" {
		t.Errorf("Args = %v", r.Args)
	}
	if r.Env["API_TOKEN"] != "tok-123" {
		t.Errorf("Env = %v", r.Env)
	}
	if r.UUID == "" {
		t.Error("UUID missing")
	}
}

func TestResolveToolAndResource(t *testing.T) {
	h := setupGateway(t)

	var tool ResolveResponse
	if resp := h.get(t, "/resolve/tool?name=search", &tool); resp.StatusCode != http.StatusOK {
		t.Fatalf("tool status = %d", resp.StatusCode)
	}

	var res ResolveResponse
	if resp := h.get(t, "/resolve/resource?uri=file%3A%2F%2F%2Fdocs%2Freadme.md", &res); resp.StatusCode != http.StatusOK {
		t.Fatalf("resource status = %d", resp.StatusCode)
	}
	if res.Name != "file:///docs/readme.md" {
		t.Errorf("resource name = %q", res.Name)
	}
}

func TestResolve_ErrorMapping(t *testing.T) {
	h := setupGateway(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"missing name param", "/resolve/prompt", http.StatusBadRequest},
		{"missing uri param", "/resolve/resource", http.StatusBadRequest},
		{"unknown prompt", "/resolve/prompt?name=nope", http.StatusNotFound},
		{"kind mismatch", "/resolve/tool?name=summarize", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.get(t, tt.path, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestResolve_RequiresAuth(t *testing.T) {
	h := setupGateway(t)

	resp, err := h.server.Client().Get(h.server.URL + "/resolve/prompt?name=summarize")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestResolve_DeactivatedConnection(t *testing.T) {
	h := setupGateway(t)
	ctx := context.Background()

	conns, err := h.gw.store.ListConnections(ctx, profileID(t, h))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.gw.store.SetConnectionStatus(ctx, conns[0].ID, store.ConnectionInactive); err != nil {
		t.Fatal(err)
	}

	resp := h.get(t, "/resolve/prompt?name=summarize", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 after deactivation", resp.StatusCode)
	}
}

func TestResolve_DisabledKind(t *testing.T) {
	h := setupGateway(t)
	ctx := context.Background()

	id := profileID(t, h)
	if err := h.gw.store.UpdateProfileCapabilities(ctx, id, true, false, true); err != nil {
		t.Fatal(err)
	}

	if resp := h.get(t, "/resolve/prompt?name=summarize", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("disabled prompt status = %d, want 404", resp.StatusCode)
	}
	if resp := h.get(t, "/resolve/tool?name=search", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("enabled tool status = %d, want 200", resp.StatusCode)
	}
}

func TestResolve_CorruptCiphertextIsOpaque500(t *testing.T) {
	h := setupGateway(t)
	ctx := context.Background()

	conns, err := h.gw.store.ListConnections(ctx, profileID(t, h))
	if err != nil {
		t.Fatal(err)
	}
	c := conns[0]
	bad := "v1:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	c.EncCommand = &bad
	if err := h.gw.store.UpdateConnectionParams(ctx, c); err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest(http.MethodGet, h.server.URL+"/resolve/prompt?name=summarize", nil)
	req.Header.Set("Authorization", "Bearer "+h.token)
	resp, err := h.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var e map[string]string
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("body %q: %v", body, err)
	}
	if e["error"] != "internal server error" {
		t.Errorf("error = %q, want sanitized message", e["error"])
	}
}

func TestListEndpoints(t *testing.T) {
	h := setupGateway(t)

	var prompts []CapabilityInfo
	if resp := h.get(t, "/prompts", &prompts); resp.StatusCode != http.StatusOK {
		t.Fatalf("prompts status = %d", resp.StatusCode)
	}
	if len(prompts) != 1 || prompts[0].Name != "summarize" {
		t.Errorf("prompts = %+v", prompts)
	}
	if prompts[0].Description != "Summarize text" {
		t.Errorf("description = %q", prompts[0].Description)
	}

	var tools []CapabilityInfo
	h.get(t, "/tools", &tools)
	if len(tools) != 1 {
		t.Errorf("tools = %+v", tools)
	}

	var resources []CapabilityInfo
	h.get(t, "/resources", &resources)
	if len(resources) != 1 {
		t.Errorf("resources = %+v", resources)
	}
}

func TestProfileCapabilitiesEndpoint(t *testing.T) {
	h := setupGateway(t)
	ctx := context.Background()

	if err := h.gw.store.UpdateProfileCapabilities(ctx, profileID(t, h), true, false, true); err != nil {
		t.Fatal(err)
	}

	var caps ProfileCapabilitiesResponse
	if resp := h.get(t, "/profile-capabilities", &caps); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !caps.Tools || caps.Prompts || !caps.Resources {
		t.Errorf("caps = %+v", caps)
	}
}

func TestHealthz(t *testing.T) {
	h := setupGateway(t)

	resp, err := h.server.Client().Get(h.server.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 without auth", resp.StatusCode)
	}
}

func profileID(t *testing.T, h *gatewayHarness) string {
	t.Helper()
	p, err := h.gw.store.GetProfileByProject(context.Background(), "project-1")
	if err != nil {
		t.Fatal(err)
	}
	return p.ID
}
