// ABOUTME: Request context plumbing for authenticated identities
// ABOUTME: Provides WithProfile/ProfileFromContext and the admin equivalent

package auth

import (
	"context"

	"github.com/porterhq/porter-gateway/internal/store"
)

// profileKey is the key type for storing a resolved profile in context.
type profileKey struct{}

// WithProfile returns a new context with the authenticated profile attached.
func WithProfile(ctx context.Context, p *store.Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFromContext retrieves the authenticated profile from the
// context, returning nil if not present.
func ProfileFromContext(ctx context.Context) *store.Profile {
	p, _ := ctx.Value(profileKey{}).(*store.Profile)
	return p
}

// MustProfileFromContext retrieves the authenticated profile, panicking
// if not present. Only for handlers mounted behind RequireAPIKey.
func MustProfileFromContext(ctx context.Context) *store.Profile {
	p := ProfileFromContext(ctx)
	if p == nil {
		panic("auth: profile not found in context")
	}
	return p
}

// adminKey is the key type for storing the admin subject in context.
type adminKey struct{}

// WithAdmin returns a new context with the admin subject attached.
func WithAdmin(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminKey{}, subject)
}

// AdminFromContext retrieves the admin subject from the context,
// returning the empty string if not present.
func AdminFromContext(ctx context.Context) string {
	s, _ := ctx.Value(adminKey{}).(string)
	return s
}
