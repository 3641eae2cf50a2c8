// ABOUTME: Connection store methods for registered backend servers
// ABOUTME: Run parameters are persisted as per-field ciphertext, nullable per field

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const connectionColumns = `id, profile_id, name, transport, status,
	enc_command, enc_args, enc_env, enc_url,
	provenance, external_id, description, created_at`

// CreateConnection creates a new connection under its profile.
func (s *SQLiteStore) CreateConnection(ctx context.Context, c *Connection) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ConnectionActive
	}
	if c.Provenance == "" {
		c.Provenance = ProvenanceCustom
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO connections (id, profile_id, name, transport, status,
			enc_command, enc_args, enc_env, enc_url,
			provenance, external_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.ProfileID,
		c.Name,
		string(c.Transport),
		string(c.Status),
		ptrToNull(c.EncCommand),
		ptrToNull(c.EncArgs),
		ptrToNull(c.EncEnv),
		ptrToNull(c.EncURL),
		string(c.Provenance),
		ptrToNull(c.ExternalID),
		c.Description,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("inserting connection: %w", ErrDuplicate)
		}
		return fmt.Errorf("inserting connection: %w", err)
	}

	s.logger.Debug("created connection", "id", c.ID, "profile_id", c.ProfileID,
		"name", c.Name, "transport", c.Transport)
	return nil
}

// GetConnection retrieves a connection by ID.
// Returns ErrNotFound if the connection doesn't exist.
func (s *SQLiteStore) GetConnection(ctx context.Context, id string) (*Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = ?`
	return scanConnectionRow(s.db.QueryRowContext(ctx, query, id))
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(sc rowScanner) (*Connection, error) {
	var c Connection
	var transport, status, provenance string
	var encCommand, encArgs, encEnv, encURL, externalID sql.NullString
	var createdAt string

	err := sc.Scan(
		&c.ID,
		&c.ProfileID,
		&c.Name,
		&transport,
		&status,
		&encCommand,
		&encArgs,
		&encEnv,
		&encURL,
		&provenance,
		&externalID,
		&c.Description,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.Transport = TransportKind(transport)
	c.Status = ConnectionStatus(status)
	c.Provenance = Provenance(provenance)

	if encCommand.Valid {
		c.EncCommand = &encCommand.String
	}
	if encArgs.Valid {
		c.EncArgs = &encArgs.String
	}
	if encEnv.Valid {
		c.EncEnv = &encEnv.String
	}
	if encURL.Valid {
		c.EncURL = &encURL.String
	}
	if externalID.Valid {
		c.ExternalID = &externalID.String
	}

	c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &c, nil
}

func scanConnectionRow(row *sql.Row) (*Connection, error) {
	c, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning connection: %w", err)
	}
	return c, nil
}

// UpdateConnectionParams rewrites a connection's name, description and
// encrypted run parameters. Absent parameters clear the stored ciphertext.
// Returns ErrNotFound if the connection doesn't exist.
func (s *SQLiteStore) UpdateConnectionParams(ctx context.Context, c *Connection) error {
	query := `
		UPDATE connections
		SET name = ?, transport = ?, enc_command = ?, enc_args = ?, enc_env = ?, enc_url = ?, description = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		c.Name,
		string(c.Transport),
		ptrToNull(c.EncCommand),
		ptrToNull(c.EncArgs),
		ptrToNull(c.EncEnv),
		ptrToNull(c.EncURL),
		c.Description,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating connection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated connection params", "id", c.ID)
	return nil
}

// SetConnectionStatus flips a connection between ACTIVE and INACTIVE.
// Returns ErrNotFound if the connection doesn't exist.
func (s *SQLiteStore) SetConnectionStatus(ctx context.Context, id string, status ConnectionStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE connections SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating connection status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated connection status", "id", id, "status", status)
	return nil
}

// ListConnections returns a profile's connections in creation order.
func (s *SQLiteStore) ListConnections(ctx context.Context, profileID string) ([]*Connection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM connections
		WHERE profile_id = ?
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("querying connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conns []*Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connection row: %w", err)
		}
		conns = append(conns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection rows: %w", err)
	}

	return conns, nil
}

// DeleteConnection removes a connection. Its capabilities and install
// record cascade.
// Returns ErrNotFound if the connection doesn't exist.
func (s *SQLiteStore) DeleteConnection(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting connection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted connection", "id", id)
	return nil
}

// Ensure SQLiteStore implements ConnectionStore.
var _ ConnectionStore = (*SQLiteStore)(nil)
