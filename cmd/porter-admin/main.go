// ABOUTME: Admin CLI for porter-gateway profile and connection management
// ABOUTME: Talks to the /admin/ HTTP API with JWT authentication

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

const banner = `
                _                          _           _
 _ __  ___ _ _| |_ ___ _ _ ___ __ _ __| |_ __ (_)_ _
| '_ \/ _ \ '_|  _/ -_) '_|___/ _' / _' | '  \| | ' \
| .__/\___/_|  \__\___|_|     \__,_\__,_|_|_|_|_|_||_|
|_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// PORTER_GATEWAY_URL takes a full URL; PORTER_GATEWAY_HOST derives an
	// http:// URL from just a hostname.
	baseURL := os.Getenv("PORTER_GATEWAY_URL")
	if baseURL == "" {
		if host := os.Getenv("PORTER_GATEWAY_HOST"); host != "" {
			baseURL = "http://" + host + ":8080"
		} else {
			baseURL = "http://localhost:8080"
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	token := getToken()

	client := &apiClient{baseURL: baseURL, token: token}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "status":
		err = cmdStatus(client)
	case "profiles":
		err = cmdProfiles(client, args)
	case "connections":
		err = cmdConnections(client, args)
	case "keys":
		err = cmdKeys(client, args)
	case "import":
		err = cmdImport(client, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: porter-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  status                               Show gateway status")
	fmt.Println("  profiles                             List all profiles")
	fmt.Println("  profiles list                        List all profiles")
	fmt.Println("  profiles create --project <id>       Create a profile")
	fmt.Println("  profiles delete <id>                 Delete a profile and everything under it")
	fmt.Println("  profiles toggle <id>                 Toggle capability kinds (--tools=on ...)")
	fmt.Println("  connections list <profile-id>        List a profile's connections")
	fmt.Println("  connections show <id>                Show one connection with decrypted params")
	fmt.Println("  connections create <profile-id>      Register a connection")
	fmt.Println("  connections delete <id>              Delete a connection")
	fmt.Println("  connections enable <id>              Mark a connection active")
	fmt.Println("  connections disable <id>             Mark a connection inactive")
	fmt.Println("  keys list <profile-id>               List a profile's API keys")
	fmt.Println("  keys create <profile-id> --name <n>  Issue a new API key")
	fmt.Println("  keys revoke <id>                     Revoke an API key")
	fmt.Println("  import <profile-id> <file.toml>      Import connections from a registry file")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  PORTER_GATEWAY_URL    Gateway base URL (default: http://localhost:8080)")
	fmt.Println("  PORTER_GATEWAY_HOST   Gateway hostname (derives http:// URL)")
	fmt.Println("  PORTER_TOKEN          Admin JWT token (falls back to the bootstrap token file)")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  porter-admin profiles create --project my-project")
	fmt.Println("  porter-admin connections create <profile-id> --name fs --transport stdio \\")
	fmt.Println("      --command npx --arg -y --arg @modelcontextprotocol/server-filesystem")
	fmt.Println("  porter-admin keys create <profile-id> --name ci")
	fmt.Println()
}

// getToken returns the JWT token from PORTER_TOKEN or the token file
// written by porter-gateway bootstrap.
func getToken() string {
	if token := os.Getenv("PORTER_TOKEN"); token != "" {
		return token
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	tokenPath := filepath.Join(configDir, "porter", "token")
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// apiClient is a thin JSON client for the admin API.
type apiClient struct {
	baseURL string
	token   string
}

// do sends a request and decodes the JSON response into out (if non-nil).
// Non-2xx responses become errors carrying the server's error message.
func (c *apiClient) do(method, path, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *apiClient) doJSON(method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.do(method, path, "application/json", body, out)
}

func requireToken(c *apiClient) error {
	if c.token == "" {
		return fmt.Errorf("no admin token: set PORTER_TOKEN or run porter-gateway bootstrap")
	}
	return nil
}

// profileJSON mirrors the admin API profile payload.
type profileJSON struct {
	ID              string `json:"id"`
	ProjectID       string `json:"project_id"`
	EnableTools     bool   `json:"enable_tools"`
	EnablePrompts   bool   `json:"enable_prompts"`
	EnableResources bool   `json:"enable_resources"`
	CreatedAt       string `json:"created_at"`
}

type connectionJSON struct {
	ID          string `json:"id"`
	ProfileID   string `json:"profile_id"`
	Name        string `json:"name"`
	Transport   string `json:"transport"`
	Status      string `json:"status"`
	Provenance  string `json:"provenance"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type connectionDetailJSON struct {
	connectionJSON
	Params struct {
		Command *string           `json:"command,omitempty"`
		Args    []string          `json:"args,omitempty"`
		Env     map[string]string `json:"env,omitempty"`
		URL     *string           `json:"url,omitempty"`
	} `json:"params"`
	Capabilities []struct {
		Kind    string `json:"kind"`
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	} `json:"capabilities"`
}

type keyJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token,omitempty"`
	Prefix    string `json:"prefix"`
	CreatedAt string `json:"created_at"`
}

// cmdStatus checks gateway reachability
func cmdStatus(c *apiClient) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()

	resp, err := http.Get(c.baseURL + "/healthz")
	if err != nil {
		yellow.Printf("  Gateway:  ")
		color.Red("UNREACHABLE (%v)\n", err)
		return nil
	}
	resp.Body.Close()

	green.Printf("  Gateway:  ")
	fmt.Printf("healthy at %s\n", c.baseURL)

	if c.token == "" {
		yellow.Printf("  Token:    ")
		fmt.Println("(none - set PORTER_TOKEN or run porter-gateway bootstrap)")
	} else {
		var profiles []profileJSON
		if err := c.do(http.MethodGet, "/admin/profiles", "", nil, &profiles); err != nil {
			yellow.Printf("  Token:    ")
			color.Red("auth failed (%v)\n", err)
		} else {
			green.Printf("  Token:    ")
			fmt.Printf("valid (%d profiles)\n", len(profiles))
		}
	}

	fmt.Println()
	return nil
}

// cmdProfiles handles profile subcommands
func cmdProfiles(c *apiClient, args []string) error {
	if err := requireToken(c); err != nil {
		return err
	}

	// Default to list
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdProfilesList(c)
	case "create", "add":
		return cmdProfilesCreate(c, args)
	case "delete", "rm", "remove":
		return cmdProfilesDelete(c, args)
	case "toggle":
		return cmdProfilesToggle(c, args)
	default:
		return fmt.Errorf("unknown profiles subcommand: %s (use list, create, delete, toggle)", subcmd)
	}
}

func cmdProfilesList(c *apiClient) error {
	var profiles []profileJSON
	if err := c.do(http.MethodGet, "/admin/profiles", "", nil, &profiles); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Profiles")
	cyan.Println("  --------")

	if len(profiles) == 0 {
		fmt.Println("  (no profiles)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tPROJECT\tTOOLS\tPROMPTS\tRESOURCES\tCREATED")
	fmt.Fprintln(w, "  --\t-------\t-----\t-------\t---------\t-------")

	for _, p := range profiles {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(p.ID, 12), truncate(p.ProjectID, 24),
			onOff(p.EnableTools), onOff(p.EnablePrompts), onOff(p.EnableResources),
			shortTime(p.CreatedAt))
	}
	w.Flush()
	fmt.Println()

	return nil
}

func cmdProfilesCreate(c *apiClient, args []string) error {
	var projectID string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--project", "-p":
			if i+1 < len(args) {
				projectID = args[i+1]
				i++
			}
		}
	}

	if projectID == "" {
		return fmt.Errorf("usage: profiles create --project <id>")
	}

	var p profileJSON
	payload := map[string]any{"project_id": projectID}
	if err := c.doJSON(http.MethodPost, "/admin/profiles", payload, &p); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Created profile: %s\n", p.ID)
	fmt.Printf("  Project: %s\n", p.ProjectID)

	return nil
}

func cmdProfilesDelete(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: profiles delete <profile-id>")
	}

	profileID := args[0]
	if err := c.do(http.MethodDelete, "/admin/profiles/"+profileID, "", nil, nil); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Deleted profile: %s\n", profileID)

	return nil
}

// cmdProfilesToggle updates which capability kinds a profile exposes.
// Flags not given keep their current value.
func cmdProfilesToggle(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: profiles toggle <profile-id> [--tools on|off] [--prompts on|off] [--resources on|off]")
	}

	profileID := args[0]
	args = args[1:]

	var current profileJSON
	if err := c.do(http.MethodGet, "/admin/profiles/"+profileID, "", nil, &current); err != nil {
		return err
	}

	tools := current.EnableTools
	prompts := current.EnablePrompts
	resources := current.EnableResources

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--tools":
			if i+1 < len(args) {
				v, err := parseOnOff(args[i+1])
				if err != nil {
					return err
				}
				tools = v
				i++
			}
		case "--prompts":
			if i+1 < len(args) {
				v, err := parseOnOff(args[i+1])
				if err != nil {
					return err
				}
				prompts = v
				i++
			}
		case "--resources":
			if i+1 < len(args) {
				v, err := parseOnOff(args[i+1])
				if err != nil {
					return err
				}
				resources = v
				i++
			}
		}
	}

	payload := map[string]any{
		"enable_tools":     tools,
		"enable_prompts":   prompts,
		"enable_resources": resources,
	}
	var updated profileJSON
	if err := c.doJSON(http.MethodPut, "/admin/profiles/"+profileID+"/capabilities", payload, &updated); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Updated profile: %s\n", updated.ID)
	fmt.Printf("  Tools:     %s\n", onOff(updated.EnableTools))
	fmt.Printf("  Prompts:   %s\n", onOff(updated.EnablePrompts))
	fmt.Printf("  Resources: %s\n", onOff(updated.EnableResources))

	return nil
}

// cmdConnections handles connection subcommands
func cmdConnections(c *apiClient, args []string) error {
	if err := requireToken(c); err != nil {
		return err
	}

	if len(args) < 1 {
		return fmt.Errorf("usage: connections <list|show|create|delete|enable|disable> ...")
	}
	subcmd := args[0]
	args = args[1:]

	switch subcmd {
	case "list", "ls":
		return cmdConnectionsList(c, args)
	case "show", "get":
		return cmdConnectionsShow(c, args)
	case "create", "add":
		return cmdConnectionsCreate(c, args)
	case "delete", "rm", "remove":
		return cmdConnectionsDelete(c, args)
	case "enable":
		return cmdConnectionsStatus(c, args, "ACTIVE")
	case "disable":
		return cmdConnectionsStatus(c, args, "INACTIVE")
	default:
		return fmt.Errorf("unknown connections subcommand: %s (use list, show, create, delete, enable, disable)", subcmd)
	}
}

func cmdConnectionsList(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: connections list <profile-id>")
	}

	var conns []connectionJSON
	if err := c.do(http.MethodGet, "/admin/profiles/"+args[0]+"/connections", "", nil, &conns); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Connections")
	cyan.Println("  -----------")

	if len(conns) == 0 {
		fmt.Println("  (no connections)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tTRANSPORT\tSTATUS\tSOURCE\tCREATED")
	fmt.Fprintln(w, "  --\t----\t---------\t------\t------\t-------")

	for _, conn := range conns {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(conn.ID, 12), truncate(conn.Name, 24), conn.Transport,
			conn.Status, conn.Provenance, shortTime(conn.CreatedAt))
	}
	w.Flush()
	fmt.Println()

	return nil
}

func cmdConnectionsShow(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: connections show <connection-id>")
	}

	var detail connectionDetailJSON
	if err := c.do(http.MethodGet, "/admin/connections/"+args[0], "", nil, &detail); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Connection")
	cyan.Println("  ----------")
	fmt.Printf("  ID:          %s\n", detail.ID)
	fmt.Printf("  Name:        %s\n", detail.Name)
	fmt.Printf("  Profile:     %s\n", detail.ProfileID)
	fmt.Printf("  Transport:   %s\n", detail.Transport)
	fmt.Printf("  Status:      %s\n", detail.Status)
	fmt.Printf("  Source:      %s\n", detail.Provenance)
	if detail.Description != "" {
		fmt.Printf("  Description: %s\n", detail.Description)
	}

	fmt.Println()
	cyan.Println("  Run Parameters")
	cyan.Println("  --------------")
	if detail.Params.Command != nil {
		fmt.Printf("  Command: %s\n", *detail.Params.Command)
	}
	if len(detail.Params.Args) > 0 {
		fmt.Printf("  Args:    %s\n", strings.Join(detail.Params.Args, " "))
	}
	for k, v := range detail.Params.Env {
		fmt.Printf("  Env:     %s=%s\n", k, v)
	}
	if detail.Params.URL != nil {
		fmt.Printf("  URL:     %s\n", *detail.Params.URL)
	}

	if len(detail.Capabilities) > 0 {
		fmt.Println()
		cyan.Println("  Capabilities")
		cyan.Println("  ------------")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, capRow := range detail.Capabilities {
			state := "enabled"
			if !capRow.Enabled {
				state = "disabled"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", capRow.Kind, capRow.Name, state)
		}
		w.Flush()
	}
	fmt.Println()

	return nil
}

func cmdConnectionsCreate(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: connections create <profile-id> --name <n> --transport <stdio|streamable_http|sse> [flags]")
	}

	profileID := args[0]
	args = args[1:]

	var name, transport, command, url, description string
	var cmdArgs []string
	env := map[string]string{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name", "-n":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "--transport", "-t":
			if i+1 < len(args) {
				transport = args[i+1]
				i++
			}
		case "--command", "-c":
			if i+1 < len(args) {
				command = args[i+1]
				i++
			}
		case "--arg", "-a":
			if i+1 < len(args) {
				cmdArgs = append(cmdArgs, args[i+1])
				i++
			}
		case "--env", "-e":
			if i+1 < len(args) {
				k, v, ok := strings.Cut(args[i+1], "=")
				if !ok {
					return fmt.Errorf("invalid --env %q (want KEY=VALUE)", args[i+1])
				}
				env[k] = v
				i++
			}
		case "--url", "-u":
			if i+1 < len(args) {
				url = args[i+1]
				i++
			}
		case "--description", "-d":
			if i+1 < len(args) {
				description = args[i+1]
				i++
			}
		}
	}

	if name == "" || transport == "" {
		return fmt.Errorf("usage: connections create <profile-id> --name <n> --transport <stdio|streamable_http|sse> [flags]")
	}

	params := map[string]any{}
	if command != "" {
		params["command"] = command
	}
	if len(cmdArgs) > 0 {
		params["args"] = cmdArgs
	}
	if len(env) > 0 {
		params["env"] = env
	}
	if url != "" {
		params["url"] = url
	}

	payload := map[string]any{
		"name":      name,
		"transport": transport,
		"params":    params,
	}
	if description != "" {
		payload["description"] = description
	}

	var conn connectionJSON
	if err := c.doJSON(http.MethodPost, "/admin/profiles/"+profileID+"/connections", payload, &conn); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Created connection: %s\n", conn.ID)
	fmt.Printf("  Name:      %s\n", conn.Name)
	fmt.Printf("  Transport: %s\n", conn.Transport)
	fmt.Printf("  Status:    %s\n", conn.Status)

	return nil
}

func cmdConnectionsDelete(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: connections delete <connection-id>")
	}

	if err := c.do(http.MethodDelete, "/admin/connections/"+args[0], "", nil, nil); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Deleted connection: %s\n", args[0])

	return nil
}

func cmdConnectionsStatus(c *apiClient, args []string, status string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: connections %s <connection-id>", strings.ToLower(status))
	}

	payload := map[string]string{"status": status}
	var conn connectionJSON
	if err := c.doJSON(http.MethodPost, "/admin/connections/"+args[0]+"/status", payload, &conn); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Connection %s is now %s\n", conn.ID, conn.Status)

	return nil
}

// cmdKeys handles API key subcommands
func cmdKeys(c *apiClient, args []string) error {
	if err := requireToken(c); err != nil {
		return err
	}

	if len(args) < 1 {
		return fmt.Errorf("usage: keys <list|create|revoke> ...")
	}
	subcmd := args[0]
	args = args[1:]

	switch subcmd {
	case "list", "ls":
		return cmdKeysList(c, args)
	case "create", "add":
		return cmdKeysCreate(c, args)
	case "revoke", "rm", "delete":
		return cmdKeysRevoke(c, args)
	default:
		return fmt.Errorf("unknown keys subcommand: %s (use list, create, revoke)", subcmd)
	}
}

func cmdKeysList(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: keys list <profile-id>")
	}

	var keys []keyJSON
	if err := c.do(http.MethodGet, "/admin/profiles/"+args[0]+"/keys", "", nil, &keys); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  API Keys")
	cyan.Println("  --------")

	if len(keys) == 0 {
		fmt.Println("  (no keys)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tPREFIX\tCREATED")
	fmt.Fprintln(w, "  --\t----\t------\t-------")

	for _, k := range keys {
		fmt.Fprintf(w, "  %s\t%s\t%s...\t%s\n",
			truncate(k.ID, 12), truncate(k.Name, 24), k.Prefix, shortTime(k.CreatedAt))
	}
	w.Flush()
	fmt.Println()

	return nil
}

func cmdKeysCreate(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: keys create <profile-id> --name <name>")
	}

	profileID := args[0]
	args = args[1:]

	var name string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name", "-n":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		}
	}

	if name == "" {
		return fmt.Errorf("usage: keys create <profile-id> --name <name>")
	}

	payload := map[string]string{"name": name}
	var key keyJSON
	if err := c.doJSON(http.MethodPost, "/admin/profiles/"+profileID+"/keys", payload, &key); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	fmt.Println()
	green.Println("  API key created")
	fmt.Println()
	cyan.Println("  Name:    " + key.Name)
	cyan.Println("  ID:      " + key.ID)
	fmt.Println()
	fmt.Println("  Token (shown once, keep it secret!):")
	fmt.Println()
	fmt.Println("  " + key.Token)
	fmt.Println()

	return nil
}

func cmdKeysRevoke(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: keys revoke <key-id>")
	}

	if err := c.do(http.MethodDelete, "/admin/keys/"+args[0], "", nil, nil); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Revoked key: %s\n", args[0])

	return nil
}

// cmdImport uploads a TOML registry file
func cmdImport(c *apiClient, args []string) error {
	if err := requireToken(c); err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: import <profile-id> <registry.toml>")
	}

	profileID := args[0]
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading registry file: %w", err)
	}

	var result struct {
		Imported []connectionJSON `json:"imported"`
		Skipped  []string         `json:"skipped"`
	}
	if err := c.do(http.MethodPost, "/admin/profiles/"+profileID+"/import", "application/toml", data, &result); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Printf("✓ Imported %d connections\n", len(result.Imported))
	for _, conn := range result.Imported {
		fmt.Printf("  + %s (%s)\n", conn.Name, conn.Transport)
	}
	if len(result.Skipped) > 0 {
		yellow.Printf("  Skipped %d existing:\n", len(result.Skipped))
		for _, name := range result.Skipped {
			fmt.Printf("  - %s\n", name)
		}
	}

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q (want on or off)", s)
}

func shortTime(rfc3339 string) string {
	if t, err := time.Parse(time.RFC3339, rfc3339); err == nil {
		return t.Format("Jan 02 15:04")
	}
	return rfc3339
}
