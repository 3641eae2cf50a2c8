// ABOUTME: API key generation and verification for resolution requests
// ABOUTME: Tokens are pgk_-prefixed; only prefix, salt and salted hash persist

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/porterhq/porter-gateway/internal/store"
)

// API key errors
var (
	// ErrUnauthenticated is returned for any credential that does not
	// verify. Unknown tokens, wrong secrets and keys whose profile has
	// been deleted all collapse into this one error so callers cannot
	// probe which case they hit.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentialFormat is returned when the presented token is
	// not even shaped like an API key.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
)

const (
	tokenPrefix = "pgk_"
	// lookupPrefixLen is how many characters of the token body are stored
	// in plaintext for database lookup. The rest is only ever compared
	// against the salted hash.
	lookupPrefixLen = 8
	tokenBytes      = 24
	saltBytes       = 16
)

// GeneratedKey is the one-time result of issuing an API key. Token is
// shown to the caller exactly once and never persisted.
type GeneratedKey struct {
	Token  string
	Prefix string
	Salt   string
	Hash   string
}

// GenerateAPIKey mints a fresh API key token plus the material the
// store keeps for later verification.
func GenerateAPIKey() (*GeneratedKey, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	body := hex.EncodeToString(raw)

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	return &GeneratedKey{
		Token:  tokenPrefix + body,
		Prefix: body[:lookupPrefixLen],
		Salt:   saltHex,
		Hash:   hashToken(saltHex, body),
	}, nil
}

// hashToken computes the stored salted digest of a token body.
func hashToken(saltHex, body string) string {
	h := sha256.Sum256([]byte(saltHex + ":" + body))
	return hex.EncodeToString(h[:])
}

// Authenticator verifies API key tokens against the store and resolves
// them to their project's profile.
type Authenticator struct {
	keys     store.APIKeyStore
	profiles store.ProfileStore
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator over the given stores.
func NewAuthenticator(keys store.APIKeyStore, profiles store.ProfileStore, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		keys:     keys,
		profiles: profiles,
		logger:   logger.With("component", "auth"),
	}
}

// Authenticate verifies a presented token and returns the profile it
// grants access to. Verification failures of every kind return
// ErrUnauthenticated; only a token that is structurally not an API key
// returns ErrInvalidCredentialFormat.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*store.Profile, error) {
	if !strings.HasPrefix(token, tokenPrefix) {
		return nil, ErrInvalidCredentialFormat
	}
	body := strings.TrimPrefix(token, tokenPrefix)
	if len(body) < lookupPrefixLen {
		return nil, ErrInvalidCredentialFormat
	}

	key, err := a.keys.GetAPIKeyByPrefix(ctx, body[:lookupPrefixLen])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("looking up api key: %w", err)
	}

	computed := hashToken(key.Salt, body)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(key.Hash)) != 1 {
		return nil, ErrUnauthenticated
	}

	profile, err := a.profiles.GetProfileByProject(ctx, key.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A key whose profile is gone must look like any other bad
			// credential from the outside.
			a.logger.Debug("api key resolved to missing profile", "key_id", key.ID, "project_id", key.ProjectID)
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	return profile, nil
}
