// ABOUTME: Capability resolution over a profile's active connections
// ABOUTME: Applies the enabled-kind gate and the first-registered-wins rule

package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/porterhq/porter-gateway/internal/store"
)

// ErrNotFound is returned when no active connection of the profile
// exposes the requested capability, or the capability's kind is
// disabled for the profile. The two cases are deliberately not
// distinguishable by callers.
var ErrNotFound = errors.New("capability not found")

// Resolver answers "which connection serves this capability" for a
// profile. It is stateless; every call reflects the store's current
// connection statuses and capability rows.
type Resolver struct {
	caps   store.CapabilityStore
	logger *slog.Logger
}

// New creates a Resolver over the given capability store.
func New(caps store.CapabilityStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		caps:   caps,
		logger: logger.With("component", "resolver"),
	}
}

// Resolve finds the connection owning the named capability of the given
// kind within the profile. When several active connections expose the
// same name, the earliest-registered connection wins. Returns
// ErrNotFound for disabled kinds, inactive owners and unknown names
// alike.
func (r *Resolver) Resolve(ctx context.Context, profile *store.Profile, kind store.CapabilityKind, nameOrURI string) (*store.CapabilityOwner, error) {
	if !store.ValidCapabilityKind(kind) {
		return nil, fmt.Errorf("unknown capability kind %q", kind)
	}
	if !profile.KindEnabled(kind) {
		return nil, ErrNotFound
	}

	owners, err := r.caps.FindOwners(ctx, profile.ID, kind, nameOrURI)
	if err != nil {
		return nil, fmt.Errorf("finding capability owners: %w", err)
	}
	if len(owners) == 0 {
		return nil, ErrNotFound
	}

	if len(owners) > 1 {
		r.logger.Debug("capability name collision", "profile_id", profile.ID,
			"kind", kind, "name", nameOrURI, "owners", len(owners),
			"winner", owners[0].Connection.ID)
	}

	return owners[0], nil
}

// ListForProfile returns every resolvable capability of the given kind
// for the profile, in connection registration order. A disabled kind
// yields an empty list, not an error.
func (r *Resolver) ListForProfile(ctx context.Context, profile *store.Profile, kind store.CapabilityKind) ([]*store.CapabilityOwner, error) {
	if !store.ValidCapabilityKind(kind) {
		return nil, fmt.Errorf("unknown capability kind %q", kind)
	}
	if !profile.KindEnabled(kind) {
		return []*store.CapabilityOwner{}, nil
	}

	owners, err := r.caps.ListProfileCapabilities(ctx, profile.ID, kind)
	if err != nil {
		return nil, fmt.Errorf("listing profile capabilities: %w", err)
	}
	if owners == nil {
		owners = []*store.CapabilityOwner{}
	}
	return owners, nil
}
