// ABOUTME: Package documentation for the credential vault
// ABOUTME: Describes the encryption scheme and its tenant isolation properties

// Package vault encrypts connection run parameters before they reach
// the store and decrypts them on the way out.
//
// # Scheme
//
// Each field (command, args, env, url) is sealed independently with
// AES-256-GCM. The key is derived per profile from the configured
// master secret using HKDF-SHA256, with the profile ID bound into the
// derivation info. Ciphertext moved between profiles therefore fails
// to open, which turns tenant-boundary bugs in calling code into hard
// errors instead of silent credential leaks.
//
// Stored ciphertext is framed as "v1:" followed by base64 of
// nonce||sealed. The version prefix leaves room to rotate the scheme
// without a coordinated migration.
//
// # Absence versus emptiness
//
// A nil field in Params means the parameter is absent, and it stays
// nil through encryption. An empty-but-present value (empty args
// slice, empty env map) encrypts to real ciphertext. The store keeps
// the same distinction with nullable columns.
//
// # Failure mode
//
// Every decryption failure surfaces as ErrDecrypt with no partial
// plaintext. Callers are expected to fail the whole operation; the
// HTTP layer maps it to an opaque 500.
package vault
