// ABOUTME: Install record store methods for the package transformer
// ABOUTME: A record exists only after a successful install; failures leave no row

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetInstallRecord retrieves the install record for a connection.
// Returns ErrNotFound if the connection has never been installed.
func (s *SQLiteStore) GetInstallRecord(ctx context.Context, connectionID string) (*InstallRecord, error) {
	query := `
		SELECT connection_id, command, args_json, install_dir, installed_at
		FROM install_records
		WHERE connection_id = ?
	`

	var rec InstallRecord
	var argsJSON, installedAt string

	err := s.db.QueryRowContext(ctx, query, connectionID).Scan(
		&rec.ConnectionID, &rec.Command, &argsJSON, &rec.InstallDir, &installedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying install record: %w", err)
	}

	if err := json.Unmarshal([]byte(argsJSON), &rec.Args); err != nil {
		return nil, fmt.Errorf("parsing install record args: %w", err)
	}

	rec.InstalledAt, err = time.Parse(time.RFC3339, installedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing installed_at: %w", err)
	}

	return &rec, nil
}

// PutInstallRecord writes the install record for a connection, replacing
// any previous one. Written only after a fully successful install.
func (s *SQLiteStore) PutInstallRecord(ctx context.Context, rec *InstallRecord) error {
	if rec.InstalledAt.IsZero() {
		rec.InstalledAt = time.Now().UTC()
	}

	args := rec.Args
	if args == nil {
		args = []string{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encoding install record args: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO install_records (connection_id, command, args_json, install_dir, installed_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.ConnectionID,
		rec.Command,
		string(argsJSON),
		rec.InstallDir,
		rec.InstalledAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing install record: %w", err)
	}

	s.logger.Debug("wrote install record", "connection_id", rec.ConnectionID, "command", rec.Command)
	return nil
}

// DeleteInstallRecord removes a connection's install record, forcing a
// reinstall on next resolution. Missing records are not an error.
func (s *SQLiteStore) DeleteInstallRecord(ctx context.Context, connectionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM install_records WHERE connection_id = ?`, connectionID); err != nil {
		return fmt.Errorf("deleting install record: %w", err)
	}
	return nil
}

// Ensure SQLiteStore implements InstallStore.
var _ InstallStore = (*SQLiteStore)(nil)
