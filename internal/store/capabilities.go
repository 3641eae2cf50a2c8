// ABOUTME: Capability store methods including the resolver's read queries
// ABOUTME: FindOwners orders candidates by connection creation for deterministic tie-break

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReplaceCapabilities swaps the full discovered-capability set for a
// connection in a single transaction. This is the write path of the
// discovery sweep: the previous rows are removed so stale capabilities
// never linger after a backend changes its declarations.
func (s *SQLiteStore) ReplaceCapabilities(ctx context.Context, connectionID string, caps []*Capability) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM capabilities WHERE connection_id = ?`, connectionID); err != nil {
		return fmt.Errorf("clearing capabilities: %w", err)
	}

	insert := `
		INSERT INTO capabilities (id, connection_id, kind, name, description, schema_json, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	for _, cp := range caps {
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		cp.ConnectionID = connectionID
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = now
		}

		var schema any
		if len(cp.Schema) > 0 {
			schema = string(cp.Schema)
		}

		if _, err := tx.ExecContext(ctx, insert,
			cp.ID,
			cp.ConnectionID,
			string(cp.Kind),
			cp.Name,
			cp.Description,
			schema,
			boolToInt(cp.Enabled),
			cp.CreatedAt.Format(time.RFC3339),
		); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("capability %q (%s) declared twice for connection: %w",
					cp.Name, cp.Kind, ErrDuplicate)
			}
			return fmt.Errorf("inserting capability: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing capabilities: %w", err)
	}

	s.logger.Debug("replaced capabilities", "connection_id", connectionID, "count", len(caps))
	return nil
}

// ListConnectionCapabilities returns all capability rows for a connection.
func (s *SQLiteStore) ListConnectionCapabilities(ctx context.Context, connectionID string) ([]*Capability, error) {
	query := `
		SELECT id, connection_id, kind, name, description, schema_json, enabled, created_at
		FROM capabilities
		WHERE connection_id = ?
		ORDER BY kind, name
	`

	rows, err := s.db.QueryContext(ctx, query, connectionID)
	if err != nil {
		return nil, fmt.Errorf("querying capabilities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var caps []*Capability
	for rows.Next() {
		cp, err := scanCapability(rows)
		if err != nil {
			return nil, err
		}
		caps = append(caps, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating capability rows: %w", err)
	}

	return caps, nil
}

func scanCapability(sc rowScanner) (*Capability, error) {
	var cp Capability
	var kind string
	var schema *string
	var enabled int
	var createdAt string

	if err := sc.Scan(&cp.ID, &cp.ConnectionID, &kind, &cp.Name,
		&cp.Description, &schema, &enabled, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning capability row: %w", err)
	}

	cp.Kind = CapabilityKind(kind)
	cp.Enabled = enabled != 0
	if schema != nil {
		cp.Schema = json.RawMessage(*schema)
	}

	var err error
	cp.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing capability created_at: %w", err)
	}

	return &cp, nil
}

// ownerColumns selects the capability row followed by its connection row.
const ownerColumns = `
	k.id, k.connection_id, k.kind, k.name, k.description, k.schema_json, k.enabled, k.created_at,
	c.id, c.profile_id, c.name, c.transport, c.status,
	c.enc_command, c.enc_args, c.enc_env, c.enc_url,
	c.provenance, c.external_id, c.description, c.created_at`

// FindOwners returns every enabled capability of the given kind named
// nameOrURI across the profile's ACTIVE connections. Rows are ordered by
// connection creation time then connection id, so the first row is the
// deterministic winner when two connections declare the same name.
func (s *SQLiteStore) FindOwners(ctx context.Context, profileID string, kind CapabilityKind, nameOrURI string) ([]*CapabilityOwner, error) {
	query := `
		SELECT ` + ownerColumns + `
		FROM capabilities k
		JOIN connections c ON c.id = k.connection_id
		WHERE c.profile_id = ?
		  AND c.status = 'ACTIVE'
		  AND k.kind = ?
		  AND k.name = ?
		  AND k.enabled = 1
		ORDER BY c.created_at ASC, c.id ASC
	`
	return s.queryOwners(ctx, query, profileID, string(kind), nameOrURI)
}

// ListProfileCapabilities returns every enabled capability of the given
// kind across the profile's ACTIVE connections, in connection creation
// order then capability name.
func (s *SQLiteStore) ListProfileCapabilities(ctx context.Context, profileID string, kind CapabilityKind) ([]*CapabilityOwner, error) {
	query := `
		SELECT ` + ownerColumns + `
		FROM capabilities k
		JOIN connections c ON c.id = k.connection_id
		WHERE c.profile_id = ?
		  AND c.status = 'ACTIVE'
		  AND k.kind = ?
		  AND k.enabled = 1
		ORDER BY c.created_at ASC, c.id ASC, k.name ASC
	`
	return s.queryOwners(ctx, query, profileID, string(kind))
}

func (s *SQLiteStore) queryOwners(ctx context.Context, query string, args ...any) ([]*CapabilityOwner, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying capability owners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var owners []*CapabilityOwner
	for rows.Next() {
		var o CapabilityOwner
		var capKind string
		var capSchema *string
		var capEnabled int
		var capCreatedAt string
		var transport, status, provenance string
		var encCommand, encArgs, encEnv, encURL, externalID *string
		var connCreatedAt string

		if err := rows.Scan(
			&o.Capability.ID,
			&o.Capability.ConnectionID,
			&capKind,
			&o.Capability.Name,
			&o.Capability.Description,
			&capSchema,
			&capEnabled,
			&capCreatedAt,
			&o.Connection.ID,
			&o.Connection.ProfileID,
			&o.Connection.Name,
			&transport,
			&status,
			&encCommand,
			&encArgs,
			&encEnv,
			&encURL,
			&provenance,
			&externalID,
			&o.Connection.Description,
			&connCreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning capability owner: %w", err)
		}

		o.Capability.Kind = CapabilityKind(capKind)
		o.Capability.Enabled = capEnabled != 0
		if capSchema != nil {
			o.Capability.Schema = json.RawMessage(*capSchema)
		}
		o.Capability.CreatedAt, err = time.Parse(time.RFC3339, capCreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing capability created_at: %w", err)
		}

		o.Connection.Transport = TransportKind(transport)
		o.Connection.Status = ConnectionStatus(status)
		o.Connection.Provenance = Provenance(provenance)
		o.Connection.EncCommand = encCommand
		o.Connection.EncArgs = encArgs
		o.Connection.EncEnv = encEnv
		o.Connection.EncURL = encURL
		o.Connection.ExternalID = externalID
		o.Connection.CreatedAt, err = time.Parse(time.RFC3339, connCreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing connection created_at: %w", err)
		}

		owners = append(owners, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating capability owners: %w", err)
	}

	return owners, nil
}

// Ensure SQLiteStore implements CapabilityStore.
var _ CapabilityStore = (*SQLiteStore)(nil)
