// Package store provides persistent storage for porter-gateway using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - ProfileStore: Tenant profiles and their enabled-capability sets
//   - ConnectionStore: Registered backend connections with encrypted parameters
//   - CapabilityStore: Discovered capabilities and the resolver's read queries
//   - APIKeyStore: Salted-hash API credentials
//   - InstallStore: Package install records for the command transformer
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Encrypted Fields
//
// Connection run parameters (command, args, env, url) are stored as
// individually nullable ciphertext columns. The store never sees plaintext
// parameters; encryption and decryption happen in the vault package. A NULL
// column means the parameter is absent - it is never an encrypted empty
// value, so partial parameter sets (a remote connection with no command)
// survive round trips.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Deletes cascade: removing a profile removes its connections, their
// capabilities and install records.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrDuplicate: Insert violated a uniqueness constraint
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() path for integration tests with
// real SQLite.
package store
