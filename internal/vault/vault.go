// ABOUTME: Credential vault encrypting connection run parameters at rest
// ABOUTME: AES-256-GCM per field, with per-profile keys derived via HKDF

package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/porterhq/porter-gateway/internal/store"
)

// ciphertextPrefix versions the wire format of stored ciphertext so the
// scheme can evolve without re-encrypting existing rows in lockstep.
const ciphertextPrefix = "v1:"

// ErrDecrypt is returned whenever stored ciphertext cannot be opened,
// whether from corruption, a wrong master secret, or a cross-profile key.
// Callers must treat it as fatal for the operation; the vault never
// returns partial plaintext.
var ErrDecrypt = errors.New("vault: decryption failed")

// Params is the plaintext form of a connection's run parameters.
// A nil Command/URL and nil Args/Env mean the parameter is absent;
// the vault preserves that distinction through an encrypt/decrypt
// round-trip.
type Params struct {
	Command *string
	Args    []string
	Env     map[string]string
	URL     *string
}

// Vault encrypts and decrypts connection parameters. Each profile gets
// its own derived key, so ciphertext leaked across tenant boundaries is
// useless without also confusing the profile ID.
type Vault struct {
	masterSecret []byte
	logger       *slog.Logger
}

// New creates a Vault from the configured master secret.
func New(masterSecret string, logger *slog.Logger) (*Vault, error) {
	if len(masterSecret) < 16 {
		return nil, fmt.Errorf("master secret too short (%d bytes, need at least 16)", len(masterSecret))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{
		masterSecret: []byte(masterSecret),
		logger:       logger.With("component", "vault"),
	}, nil
}

// profileKey derives the 32-byte AES key for a profile. The profile ID
// goes into the HKDF info string, not the salt, so the derivation is
// deterministic per profile.
func (v *Vault) profileKey(profileID string) ([]byte, error) {
	kdf := hkdf.New(sha256.New, v.masterSecret, nil, []byte("porter/vault:v1:"+profileID))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("deriving profile key: %w", err)
	}
	return key, nil
}

func (v *Vault) gcm(profileID string) (cipher.AEAD, error) {
	key, err := v.profileKey(profileID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aead, nil
}

// EncryptField seals a single plaintext field under the profile's key.
// The result is "v1:" + base64(nonce || sealed).
func (v *Vault) EncryptField(profileID string, plaintext []byte) (string, error) {
	aead, err := v.gcm(profileID)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return ciphertextPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptField opens a single stored ciphertext under the profile's key.
// Any failure, malformed framing included, is reported as ErrDecrypt.
func (v *Vault) DecryptField(profileID string, ciphertext string) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, ciphertextPrefix) {
		return nil, ErrDecrypt
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, ciphertextPrefix))
	if err != nil {
		return nil, ErrDecrypt
	}

	aead, err := v.gcm(profileID)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize() {
		return nil, ErrDecrypt
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// EncryptParams encrypts each present parameter into its stored form.
// Absent parameters stay nil rather than becoming encrypted empties, so
// the store can tell "no env" from "empty env".
func (v *Vault) EncryptParams(profileID string, p Params) (encCommand, encArgs, encEnv, encURL *string, err error) {
	if p.Command != nil {
		ct, err := v.EncryptField(profileID, []byte(*p.Command))
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encrypting command: %w", err)
		}
		encCommand = &ct
	}
	if p.Args != nil {
		data, err := json.Marshal(p.Args)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encoding args: %w", err)
		}
		ct, err := v.EncryptField(profileID, data)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encrypting args: %w", err)
		}
		encArgs = &ct
	}
	if p.Env != nil {
		data, err := json.Marshal(p.Env)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encoding env: %w", err)
		}
		ct, err := v.EncryptField(profileID, data)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encrypting env: %w", err)
		}
		encEnv = &ct
	}
	if p.URL != nil {
		ct, err := v.EncryptField(profileID, []byte(*p.URL))
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encrypting url: %w", err)
		}
		encURL = &ct
	}
	return encCommand, encArgs, encEnv, encURL, nil
}

// DecryptConnection recovers a connection's plaintext run parameters.
// Returns ErrDecrypt if any present field fails to open; no partial
// result is ever returned.
func (v *Vault) DecryptConnection(c *store.Connection) (Params, error) {
	var p Params

	if c.EncCommand != nil {
		data, err := v.DecryptField(c.ProfileID, *c.EncCommand)
		if err != nil {
			v.logger.Error("failed to decrypt command", "connection_id", c.ID, "error", err)
			return Params{}, err
		}
		cmd := string(data)
		p.Command = &cmd
	}
	if c.EncArgs != nil {
		data, err := v.DecryptField(c.ProfileID, *c.EncArgs)
		if err != nil {
			v.logger.Error("failed to decrypt args", "connection_id", c.ID, "error", err)
			return Params{}, err
		}
		if err := json.Unmarshal(data, &p.Args); err != nil {
			return Params{}, ErrDecrypt
		}
		if p.Args == nil {
			p.Args = []string{}
		}
	}
	if c.EncEnv != nil {
		data, err := v.DecryptField(c.ProfileID, *c.EncEnv)
		if err != nil {
			v.logger.Error("failed to decrypt env", "connection_id", c.ID, "error", err)
			return Params{}, err
		}
		if err := json.Unmarshal(data, &p.Env); err != nil {
			return Params{}, ErrDecrypt
		}
		if p.Env == nil {
			p.Env = map[string]string{}
		}
	}
	if c.EncURL != nil {
		data, err := v.DecryptField(c.ProfileID, *c.EncURL)
		if err != nil {
			v.logger.Error("failed to decrypt url", "connection_id", c.ID, "error", err)
			return Params{}, err
		}
		u := string(data)
		p.URL = &u
	}

	return p, nil
}
