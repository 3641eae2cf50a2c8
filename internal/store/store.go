// ABOUTME: Core data types and store interfaces for the gateway
// ABOUTME: Defines profiles, connections, capabilities, API keys and install records

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Common errors returned by store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("already exists")
)

// TransportKind identifies how a connection's backend is reached.
type TransportKind string

const (
	// TransportStdio runs the backend as a local subprocess.
	TransportStdio TransportKind = "stdio"
	// TransportStreamableHTTP reaches the backend over HTTP with streaming.
	TransportStreamableHTTP TransportKind = "streamable_http"
	// TransportSSE reaches the backend over a server-sent event channel.
	TransportSSE TransportKind = "sse"
)

// ValidTransport reports whether k is a known transport kind.
func ValidTransport(k TransportKind) bool {
	switch k {
	case TransportStdio, TransportStreamableHTTP, TransportSSE:
		return true
	}
	return false
}

// ConnectionStatus is the activation state of a connection.
// Only ACTIVE connections participate in capability resolution.
type ConnectionStatus string

const (
	ConnectionActive   ConnectionStatus = "ACTIVE"
	ConnectionInactive ConnectionStatus = "INACTIVE"
)

// Provenance records where a connection definition came from.
type Provenance string

const (
	ProvenanceCustom    Provenance = "custom"
	ProvenanceRegistry  Provenance = "registry"
	ProvenanceCommunity Provenance = "community"
)

// CapabilityKind is the closed set of capability categories a
// connection can expose.
type CapabilityKind string

const (
	KindTool             CapabilityKind = "tool"
	KindPrompt           CapabilityKind = "prompt"
	KindResource         CapabilityKind = "resource"
	KindResourceTemplate CapabilityKind = "resource_template"
)

// ValidCapabilityKind reports whether k is a known capability kind.
func ValidCapabilityKind(k CapabilityKind) bool {
	switch k {
	case KindTool, KindPrompt, KindResource, KindResourceTemplate:
		return true
	}
	return false
}

// Profile is the tenant-scoped configuration unit owning connections.
// The Enable* flags form the profile's enabled-capability set: a kind
// that is disabled never resolves, regardless of what connections declare.
type Profile struct {
	ID              string
	ProjectID       string
	EnableTools     bool
	EnablePrompts   bool
	EnableResources bool
	CreatedAt       time.Time
}

// KindEnabled reports whether the given capability kind is enabled for
// this profile. Resource templates follow the resources flag.
func (p *Profile) KindEnabled(kind CapabilityKind) bool {
	switch kind {
	case KindTool:
		return p.EnableTools
	case KindPrompt:
		return p.EnablePrompts
	case KindResource, KindResourceTemplate:
		return p.EnableResources
	}
	return false
}

// Connection is a registered backend capability provider owned by a profile.
// The Enc* fields hold per-field ciphertext produced by the vault; a nil
// field means the parameter is absent, not an encrypted empty value.
type Connection struct {
	ID          string
	ProfileID   string
	Name        string
	Transport   TransportKind
	Status      ConnectionStatus
	EncCommand  *string
	EncArgs     *string
	EncEnv      *string
	EncURL      *string
	Provenance  Provenance
	ExternalID  *string
	Description string
	CreatedAt   time.Time
}

// Capability is a tool, prompt or resource discovered on a connection.
// Name carries the URI for resource kinds. Uniqueness is scoped to
// (connection, kind, name) - cross-connection collisions are legal and
// arbitrated by the resolver.
type Capability struct {
	ID           string
	ConnectionID string
	Kind         CapabilityKind
	Name         string
	Description  string
	Schema       json.RawMessage
	Enabled      bool
	CreatedAt    time.Time
}

// CapabilityOwner pairs a capability with its owning connection, as
// produced by the resolution queries.
type CapabilityOwner struct {
	Capability Capability
	Connection Connection
}

// APIKey is the persisted form of an API credential. The token itself is
// never stored; only the lookup prefix, a random salt and the salted
// SHA-256 hash are kept.
type APIKey struct {
	ID        string
	ProjectID string
	Name      string
	Prefix    string
	Salt      string
	Hash      string
	CreatedAt time.Time
}

// InstallRecord tracks a completed package installation for a connection.
// Consulted on every resolution; never implicitly expired.
type InstallRecord struct {
	ConnectionID string
	Command      string
	Args         []string
	InstallDir   string
	InstalledAt  time.Time
}

// ProfileStore defines profile persistence.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	GetProfileByProject(ctx context.Context, projectID string) (*Profile, error)
	UpdateProfileCapabilities(ctx context.Context, id string, tools, prompts, resources bool) error
	ListProfiles(ctx context.Context) ([]*Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// ConnectionStore defines connection persistence.
type ConnectionStore interface {
	CreateConnection(ctx context.Context, c *Connection) error
	GetConnection(ctx context.Context, id string) (*Connection, error)
	UpdateConnectionParams(ctx context.Context, c *Connection) error
	SetConnectionStatus(ctx context.Context, id string, status ConnectionStatus) error
	ListConnections(ctx context.Context, profileID string) ([]*Connection, error)
	DeleteConnection(ctx context.Context, id string) error
}

// CapabilityStore defines discovered-capability persistence and the
// read side consumed by the resolver.
type CapabilityStore interface {
	ReplaceCapabilities(ctx context.Context, connectionID string, caps []*Capability) error
	ListConnectionCapabilities(ctx context.Context, connectionID string) ([]*Capability, error)

	// FindOwners returns capabilities named nameOrURI of the given kind
	// across the profile's ACTIVE connections, ordered by connection
	// creation time then id. Disabled capability rows are excluded.
	FindOwners(ctx context.Context, profileID string, kind CapabilityKind, nameOrURI string) ([]*CapabilityOwner, error)

	// ListProfileCapabilities returns every enabled capability of the
	// given kind across the profile's ACTIVE connections.
	ListProfileCapabilities(ctx context.Context, profileID string, kind CapabilityKind) ([]*CapabilityOwner, error)
}

// APIKeyStore defines API credential persistence.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, k *APIKey) error
	GetAPIKeyByPrefix(ctx context.Context, prefix string) (*APIKey, error)
	ListAPIKeys(ctx context.Context, projectID string) ([]*APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
}

// InstallStore defines install record persistence.
type InstallStore interface {
	GetInstallRecord(ctx context.Context, connectionID string) (*InstallRecord, error)
	PutInstallRecord(ctx context.Context, rec *InstallRecord) error
	DeleteInstallRecord(ctx context.Context, connectionID string) error
}

// Store aggregates all persistence interfaces implemented by SQLiteStore.
type Store interface {
	ProfileStore
	ConnectionStore
	CapabilityStore
	APIKeyStore
	InstallStore
	Close() error
}
