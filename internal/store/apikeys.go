// ABOUTME: API key store methods for bearer credential persistence
// ABOUTME: Stores only prefix, salt and salted hash; the token is never persisted

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateAPIKey persists a new API key record.
// The Prefix is unique; collisions return ErrDuplicate (the issuer
// should generate a fresh token and retry).
func (s *SQLiteStore) CreateAPIKey(ctx context.Context, k *APIKey) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO api_keys (id, project_id, name, prefix, salt, hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		k.ID,
		k.ProjectID,
		k.Name,
		k.Prefix,
		k.Salt,
		k.Hash,
		k.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting api key: %w", err)
	}

	s.logger.Debug("created api key", "id", k.ID, "project_id", k.ProjectID, "prefix", k.Prefix)
	return nil
}

// GetAPIKeyByPrefix retrieves an API key by its lookup prefix.
// Returns ErrNotFound if no key matches.
func (s *SQLiteStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) (*APIKey, error) {
	query := `
		SELECT id, project_id, name, prefix, salt, hash, created_at
		FROM api_keys
		WHERE prefix = ?
	`

	var k APIKey
	var createdAt string

	err := s.db.QueryRowContext(ctx, query, prefix).Scan(
		&k.ID, &k.ProjectID, &k.Name, &k.Prefix, &k.Salt, &k.Hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying api key: %w", err)
	}

	k.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &k, nil
}

// ListAPIKeys returns all API keys for a project, oldest first.
// Hash and salt are included; callers exposing keys over the wire must
// strip them.
func (s *SQLiteStore) ListAPIKeys(ctx context.Context, projectID string) ([]*APIKey, error) {
	query := `
		SELECT id, project_id, name, prefix, salt, hash, created_at
		FROM api_keys
		WHERE project_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying api keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []*APIKey
	for rows.Next() {
		var k APIKey
		var createdAt string

		if err := rows.Scan(&k.ID, &k.ProjectID, &k.Name, &k.Prefix, &k.Salt, &k.Hash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning api key row: %w", err)
		}

		k.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		keys = append(keys, &k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating api key rows: %w", err)
	}

	return keys, nil
}

// DeleteAPIKey revokes a key by deletion.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStore) DeleteAPIKey(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted api key", "id", id)
	return nil
}

// Ensure SQLiteStore implements APIKeyStore.
var _ APIKeyStore = (*SQLiteStore)(nil)
