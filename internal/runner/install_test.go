// ABOUTME: Tests for package spec parsing and binary name derivation
// ABOUTME: Pure functions only; no subprocesses are run

package runner

import "testing"

func TestParseInvocation(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		args     []string
		wantNil  bool
		wantRt   Runtime
		wantPkg  string
		wantArgs []string
	}{
		{
			name: "npx with yes flag", command: "npx",
			args:   []string{"-y", "@scope/server@1.2.3", "--stdio", "/data"},
			wantRt: RuntimeNode, wantPkg: "@scope/server@1.2.3", wantArgs: []string{"--stdio", "/data"},
		},
		{
			name: "npx long yes flag", command: "npx",
			args:   []string{"--yes", "server-pkg"},
			wantRt: RuntimeNode, wantPkg: "server-pkg", wantArgs: []string{},
		},
		{
			name: "npx bare", command: "npx",
			args:   []string{"server-pkg"},
			wantRt: RuntimeNode, wantPkg: "server-pkg", wantArgs: []string{},
		},
		{
			name: "uvx", command: "uvx",
			args:   []string{"mcp-server-fetch", "--port", "8080"},
			wantRt: RuntimePython, wantPkg: "mcp-server-fetch", wantArgs: []string{"--port", "8080"},
		},
		{name: "npx no package", command: "npx", args: []string{"-y"}, wantNil: true},
		{name: "npx empty args", command: "npx", args: nil, wantNil: true},
		{name: "plain binary", command: "/usr/bin/server", args: []string{"x"}, wantNil: true},
		{name: "node is not npx", command: "node", args: []string{"server.js"}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := parseInvocation(tt.command, tt.args)
			if tt.wantNil {
				if inv != nil {
					t.Fatalf("parseInvocation() = %+v, want nil", inv)
				}
				return
			}
			if inv == nil {
				t.Fatal("parseInvocation() = nil, want invocation")
			}
			if inv.runtime != tt.wantRt {
				t.Errorf("runtime = %q, want %q", inv.runtime, tt.wantRt)
			}
			if inv.pkg != tt.wantPkg {
				t.Errorf("pkg = %q, want %q", inv.pkg, tt.wantPkg)
			}
			if len(inv.args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", inv.args, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if inv.args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, want %q", i, inv.args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestNodeBinaryName(t *testing.T) {
	tests := []struct {
		pkg  string
		want string
	}{
		{"server", "server"},
		{"server@1.2.3", "server"},
		{"server@latest", "server"},
		{"@scope/server", "server"},
		{"@scope/server@1.2.3", "server"},
		{"@modelcontextprotocol/server-filesystem@0.6.2", "server-filesystem"},
	}

	for _, tt := range tests {
		if got := nodeBinaryName(tt.pkg); got != tt.want {
			t.Errorf("nodeBinaryName(%q) = %q, want %q", tt.pkg, got, tt.want)
		}
	}
}

func TestPythonBinaryName(t *testing.T) {
	tests := []struct {
		pkg  string
		want string
	}{
		{"mcp-server-fetch", "mcp-server-fetch"},
		{"mcp-server-fetch==1.0.0", "mcp-server-fetch"},
		{"mcp-server-git>=2.1", "mcp-server-git"},
		{"some-server[extras]==0.3", "some-server"},
	}

	for _, tt := range tests {
		if got := pythonBinaryName(tt.pkg); got != tt.want {
			t.Errorf("pythonBinaryName(%q) = %q, want %q", tt.pkg, got, tt.want)
		}
	}
}
