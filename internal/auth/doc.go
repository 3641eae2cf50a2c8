// Package auth provides authentication for porter-gateway.
//
// # Authentication Methods
//
// Two credential kinds are supported:
//
//   - API Keys: Resolution clients authenticate with a bearer token of
//     the form "pgk_<48 hex chars>". The store keeps only an 8-character
//     lookup prefix, a random salt and the salted SHA-256 hash; the
//     token itself is shown once at creation and never persisted.
//
//   - JWT Tokens: Admin API clients authenticate with HS256-signed JWTs
//     issued against the configured admin secret.
//
// # API Key Verification
//
// Authenticate looks the key up by prefix, recomputes the salted hash
// and compares it in constant time, then resolves the key's project to
// its profile. Every failure mode - unknown prefix, hash mismatch,
// deleted profile - returns the same ErrUnauthenticated, so a caller
// cannot distinguish a revoked key from one that never existed.
//
// # Middleware
//
// RequireAPIKey wraps the resolution endpoints: it authenticates the
// bearer token and attaches the resolved profile to the request
// context for handlers to read via ProfileFromContext. RequireAdmin
// does the same for the admin surface with WithAdmin/AdminFromContext.
package auth
