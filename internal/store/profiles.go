// ABOUTME: Profile store methods for tenant-scoped configuration units
// ABOUTME: Profiles own connections and the enabled-capability set

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateProfile creates a new profile. The project association is unique:
// a second profile for the same project returns ErrDuplicate.
func (s *SQLiteStore) CreateProfile(ctx context.Context, p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO profiles (id, project_id, enable_tools, enable_prompts, enable_resources, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.ProjectID,
		boolToInt(p.EnableTools),
		boolToInt(p.EnablePrompts),
		boolToInt(p.EnableResources),
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting profile: %w", err)
	}

	s.logger.Debug("created profile", "id", p.ID, "project_id", p.ProjectID)
	return nil
}

// GetProfile retrieves a profile by ID.
// Returns ErrNotFound if the profile doesn't exist.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, project_id, enable_tools, enable_prompts, enable_resources, created_at
		FROM profiles
		WHERE id = ?
	`
	return s.scanProfile(s.db.QueryRowContext(ctx, query, id))
}

// GetProfileByProject retrieves the profile bound to a project.
// Returns ErrNotFound if no profile exists for the project.
func (s *SQLiteStore) GetProfileByProject(ctx context.Context, projectID string) (*Profile, error) {
	query := `
		SELECT id, project_id, enable_tools, enable_prompts, enable_resources, created_at
		FROM profiles
		WHERE project_id = ?
	`
	return s.scanProfile(s.db.QueryRowContext(ctx, query, projectID))
}

func (s *SQLiteStore) scanProfile(row *sql.Row) (*Profile, error) {
	var p Profile
	var tools, prompts, resources int
	var createdAt string

	err := row.Scan(&p.ID, &p.ProjectID, &tools, &prompts, &resources, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	p.EnableTools = tools != 0
	p.EnablePrompts = prompts != 0
	p.EnableResources = resources != 0

	p.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &p, nil
}

// UpdateProfileCapabilities replaces the profile's enabled-capability set.
// Returns ErrNotFound if the profile doesn't exist.
func (s *SQLiteStore) UpdateProfileCapabilities(ctx context.Context, id string, tools, prompts, resources bool) error {
	query := `
		UPDATE profiles
		SET enable_tools = ?, enable_prompts = ?, enable_resources = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		boolToInt(tools), boolToInt(prompts), boolToInt(resources), id)
	if err != nil {
		return fmt.Errorf("updating profile capabilities: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated profile capabilities", "id", id,
		"tools", tools, "prompts", prompts, "resources", resources)
	return nil
}

// ListProfiles returns all profiles ordered by creation time.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT id, project_id, enable_tools, enable_prompts, enable_resources, created_at
		FROM profiles
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []*Profile
	for rows.Next() {
		var p Profile
		var tools, prompts, resources int
		var createdAt string

		if err := rows.Scan(&p.ID, &p.ProjectID, &tools, &prompts, &resources, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}

		p.EnableTools = tools != 0
		p.EnablePrompts = prompts != 0
		p.EnableResources = resources != 0

		p.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	return profiles, nil
}

// DeleteProfile removes a profile. Owned connections, their capabilities
// and install records cascade.
// Returns ErrNotFound if the profile doesn't exist.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted profile", "id", id)
	return nil
}

// Ensure SQLiteStore implements ProfileStore.
var _ ProfileStore = (*SQLiteStore)(nil)
