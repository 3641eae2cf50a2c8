// ABOUTME: Tests for install record persistence
// ABOUTME: Covers upsert semantics, nil-args normalization and cascade cleanup

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedConnection(t *testing.T, s *SQLiteStore, profileID string) *Connection {
	t.Helper()
	c := &Connection{ProfileID: profileID, Name: "srv", Transport: TransportStdio}
	require.NoError(t, s.CreateConnection(context.Background(), c))
	return c
}

func TestPutAndGetInstallRecord(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")
	conn := seedConnection(t, s, p.ID)

	rec := &InstallRecord{
		ConnectionID: conn.ID,
		Command:      "/opt/porter/installs/" + conn.ID + "/node_modules/.bin/server",
		Args:         []string{"--stdio", "/data"},
		InstallDir:   "/opt/porter/installs/" + conn.ID,
	}
	require.NoError(t, s.PutInstallRecord(ctx, rec))

	got, err := s.GetInstallRecord(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Command, got.Command)
	assert.Equal(t, []string{"--stdio", "/data"}, got.Args)
	assert.Equal(t, rec.InstallDir, got.InstallDir)
	assert.False(t, got.InstalledAt.IsZero())
}

func TestPutInstallRecord_Replaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")
	conn := seedConnection(t, s, p.ID)

	require.NoError(t, s.PutInstallRecord(ctx, &InstallRecord{
		ConnectionID: conn.ID,
		Command:      "old-binary",
		Args:         []string{"a"},
		InstallDir:   "/old",
	}))
	require.NoError(t, s.PutInstallRecord(ctx, &InstallRecord{
		ConnectionID: conn.ID,
		Command:      "new-binary",
		InstallDir:   "/new",
	}))

	got, err := s.GetInstallRecord(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-binary", got.Command)
	assert.Equal(t, "/new", got.InstallDir)
	assert.Empty(t, got.Args, "nil args round-trip as empty")
}

func TestGetInstallRecord_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetInstallRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteInstallRecord(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")
	conn := seedConnection(t, s, p.ID)

	require.NoError(t, s.PutInstallRecord(ctx, &InstallRecord{
		ConnectionID: conn.ID,
		Command:      "binary",
		InstallDir:   "/dir",
	}))

	require.NoError(t, s.DeleteInstallRecord(ctx, conn.ID))
	_, err := s.GetInstallRecord(ctx, conn.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent record is not an error
	require.NoError(t, s.DeleteInstallRecord(ctx, conn.ID))
}
