// ABOUTME: Command transformation from package-runner invocations to installed binaries
// ABOUTME: Coalesces concurrent installs per connection and caches results in the store

package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/porterhq/porter-gateway/internal/store"
	"github.com/porterhq/porter-gateway/internal/vault"
)

// ErrInstallFailed is returned when a package installation does not
// complete. The failure is never recorded, so the next resolution
// retries the install from scratch.
var ErrInstallFailed = errors.New("package install failed")

// Runtime identifies which package ecosystem an invocation targets.
type Runtime string

const (
	RuntimeNode   Runtime = "node"
	RuntimePython Runtime = "python"
)

// InstallRequest describes one package installation.
type InstallRequest struct {
	ConnectionID string
	Runtime      Runtime
	Package      string
}

// Installer performs the actual package installation and returns the
// absolute path of the installed binary.
type Installer interface {
	Install(ctx context.Context, req InstallRequest) (binPath, installDir string, err error)
}

// Transformer rewrites package-runner invocations (npx, uvx) into
// direct executions of a locally installed binary. Commands that are
// not package-runner invocations pass through untouched.
type Transformer struct {
	installs  store.InstallStore
	installer Installer
	group     singleflight.Group
	logger    *slog.Logger
}

// NewTransformer creates a Transformer over the given install store and
// installer.
func NewTransformer(installs store.InstallStore, installer Installer, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		installs:  installs,
		installer: installer,
		logger:    logger.With("component", "runner"),
	}
}

// invocation is a parsed package-runner command line.
type invocation struct {
	runtime Runtime
	pkg     string
	// args is everything after the package spec, preserved verbatim
	args []string
}

// parseInvocation recognizes the npx and uvx conventions. Runner-level
// flags before the package spec (-y, --yes) are consumed; everything
// after the spec belongs to the launched server. Returns nil when the
// command is not a recognized runner or names no package.
func parseInvocation(command string, args []string) *invocation {
	var runtime Runtime
	switch command {
	case "npx":
		runtime = RuntimeNode
	case "uvx":
		runtime = RuntimePython
	default:
		return nil
	}

	i := 0
	for i < len(args) && (args[i] == "-y" || args[i] == "--yes") {
		i++
	}
	if i >= len(args) {
		return nil
	}

	return &invocation{
		runtime: runtime,
		pkg:     args[i],
		args:    args[i+1:],
	}
}

// Transform rewrites the connection's run parameters for execution. A
// package-runner invocation resolves to its installed binary, running
// the install first if no record exists. Anything else is returned
// unchanged. Env and post-package args survive the rewrite verbatim.
func (t *Transformer) Transform(ctx context.Context, connectionID string, p vault.Params) (vault.Params, error) {
	if p.Command == nil {
		return p, nil
	}

	inv := parseInvocation(*p.Command, p.Args)
	if inv == nil {
		return p, nil
	}

	rec, err := t.installedRecord(ctx, connectionID, inv)
	if err != nil {
		return vault.Params{}, err
	}

	out := p
	out.Command = &rec.Command
	out.Args = inv.args
	return out, nil
}

// installedRecord returns the install record for the connection,
// creating it by installing the package on first use. Concurrent calls
// for the same connection share a single install execution and its
// outcome.
func (t *Transformer) installedRecord(ctx context.Context, connectionID string, inv *invocation) (*store.InstallRecord, error) {
	rec, err := t.installs.GetInstallRecord(ctx, connectionID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("reading install record: %w", err)
	}

	v, err, _ := t.group.Do(connectionID, func() (any, error) {
		// An install must not die with the request that happened to
		// trigger it; later waiters still want the result.
		ictx := context.WithoutCancel(ctx)

		// Re-check under the flight: a concurrent caller may have
		// finished the install between our miss and this closure.
		if rec, err := t.installs.GetInstallRecord(ictx, connectionID); err == nil {
			return rec, nil
		}

		t.logger.Info("installing package", "connection_id", connectionID,
			"runtime", inv.runtime, "package", inv.pkg)
		start := time.Now()

		binPath, installDir, err := t.installer.Install(ictx, InstallRequest{
			ConnectionID: connectionID,
			Runtime:      inv.runtime,
			Package:      inv.pkg,
		})
		if err != nil {
			t.logger.Error("package install failed", "connection_id", connectionID,
				"package", inv.pkg, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrInstallFailed, err)
		}

		rec := &store.InstallRecord{
			ConnectionID: connectionID,
			Command:      binPath,
			Args:         inv.args,
			InstallDir:   installDir,
		}
		if err := t.installs.PutInstallRecord(ictx, rec); err != nil {
			return nil, fmt.Errorf("recording install: %w", err)
		}

		t.logger.Info("package installed", "connection_id", connectionID,
			"package", inv.pkg, "bin", binPath, "duration", time.Since(start))
		return rec, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*store.InstallRecord), nil
}

// Invalidate drops the cached install for a connection so the next
// resolution reinstalls. Used when a connection's parameters change.
func (t *Transformer) Invalidate(ctx context.Context, connectionID string) error {
	if err := t.installs.DeleteInstallRecord(ctx, connectionID); err != nil {
		return fmt.Errorf("dropping install record: %w", err)
	}
	return nil
}
