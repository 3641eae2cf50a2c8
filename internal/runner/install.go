// ABOUTME: Package installation via npm and uv subprocesses
// ABOUTME: Lays out per-connection install directories and locates the binary

package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecInstaller installs packages by shelling out to npm and uv.
// Each connection gets its own directory under the configured install
// root, so reinstalls and deletions never touch a neighbor.
type ExecInstaller struct {
	installDir string
	npmBin     string
	uvBin      string
	logger     *slog.Logger
}

// NewExecInstaller creates an ExecInstaller rooted at installDir.
func NewExecInstaller(installDir, npmBin, uvBin string, logger *slog.Logger) *ExecInstaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecInstaller{
		installDir: installDir,
		npmBin:     npmBin,
		uvBin:      uvBin,
		logger:     logger.With("component", "installer"),
	}
}

// Install downloads the package into the connection's directory and
// returns the path of its executable.
func (e *ExecInstaller) Install(ctx context.Context, req InstallRequest) (string, string, error) {
	dir := filepath.Join(e.installDir, req.ConnectionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating install directory: %w", err)
	}

	switch req.Runtime {
	case RuntimeNode:
		return e.installNode(ctx, dir, req.Package)
	case RuntimePython:
		return e.installPython(ctx, dir, req.Package)
	default:
		return "", "", fmt.Errorf("unknown runtime %q", req.Runtime)
	}
}

func (e *ExecInstaller) installNode(ctx context.Context, dir, pkg string) (string, string, error) {
	cmd := exec.CommandContext(ctx, e.npmBin, "install", "--prefix", dir, pkg)
	if out, err := cmd.CombinedOutput(); err != nil {
		e.logger.Debug("npm install output", "package", pkg, "output", string(out))
		return "", "", fmt.Errorf("npm install %s: %w", pkg, err)
	}

	bin := filepath.Join(dir, "node_modules", ".bin", nodeBinaryName(pkg))
	if _, err := os.Stat(bin); err != nil {
		return "", "", fmt.Errorf("installed binary not found at %s: %w", bin, err)
	}
	return bin, dir, nil
}

func (e *ExecInstaller) installPython(ctx context.Context, dir, pkg string) (string, string, error) {
	venv := filepath.Join(dir, "venv")

	cmd := exec.CommandContext(ctx, e.uvBin, "venv", venv)
	if out, err := cmd.CombinedOutput(); err != nil {
		e.logger.Debug("uv venv output", "package", pkg, "output", string(out))
		return "", "", fmt.Errorf("uv venv: %w", err)
	}

	cmd = exec.CommandContext(ctx, e.uvBin, "pip", "install", "--python",
		filepath.Join(venv, "bin", "python"), pkg)
	if out, err := cmd.CombinedOutput(); err != nil {
		e.logger.Debug("uv pip install output", "package", pkg, "output", string(out))
		return "", "", fmt.Errorf("uv pip install %s: %w", pkg, err)
	}

	bin := filepath.Join(venv, "bin", pythonBinaryName(pkg))
	if _, err := os.Stat(bin); err != nil {
		return "", "", fmt.Errorf("installed binary not found at %s: %w", bin, err)
	}
	return bin, dir, nil
}

// nodeBinaryName derives the executable name from an npm package spec.
// "@scope/server@1.2.3" and "server@latest" both yield "server"; the
// convention is that the package's bin entry matches its unscoped name.
func nodeBinaryName(pkg string) string {
	name := pkg
	if strings.HasPrefix(name, "@") {
		// Scoped package: the version delimiter is the second @
		if i := strings.Index(name[1:], "@"); i >= 0 {
			name = name[:i+1]
		}
		if j := strings.Index(name, "/"); j >= 0 {
			name = name[j+1:]
		}
	} else if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return name
}

// pythonBinaryName derives the executable name from a PyPI requirement.
// Version pins and extras are stripped; the uvx convention is that the
// package installs a console script named after itself.
func pythonBinaryName(pkg string) string {
	name := pkg
	for _, sep := range []string{"==", ">=", "<=", "~=", "!=", ">", "<", "["} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	return strings.TrimSpace(name)
}

// Ensure ExecInstaller implements Installer.
var _ Installer = (*ExecInstaller)(nil)
