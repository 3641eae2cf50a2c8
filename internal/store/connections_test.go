// ABOUTME: Tests for connection store operations
// ABOUTME: Covers encrypted field nullability, status flips, and deletion

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateConnection_Defaults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")

	conn := &Connection{
		ProfileID: p.ID,
		Name:      "github",
		Transport: TransportStdio,
	}
	require.NoError(t, s.CreateConnection(ctx, conn))

	retrieved, err := s.GetConnection(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectionActive, retrieved.Status)
	assert.Equal(t, ProvenanceCustom, retrieved.Provenance)
	assert.Nil(t, retrieved.EncCommand)
	assert.Nil(t, retrieved.EncArgs)
	assert.Nil(t, retrieved.EncEnv)
	assert.Nil(t, retrieved.EncURL)
	assert.Nil(t, retrieved.ExternalID)
}

func TestConnection_EncryptedFieldsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")

	conn := &Connection{
		ProfileID:  p.ID,
		Name:       "remote",
		Transport:  TransportStreamableHTTP,
		EncURL:     strPtr("v1:ciphertext-url"),
		Provenance: ProvenanceRegistry,
		ExternalID: strPtr("registry-42"),
	}
	require.NoError(t, s.CreateConnection(ctx, conn))

	retrieved, err := s.GetConnection(ctx, conn.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.EncURL)
	assert.Equal(t, "v1:ciphertext-url", *retrieved.EncURL)
	assert.Nil(t, retrieved.EncCommand, "absent params stay NULL, not empty ciphertext")
	require.NotNil(t, retrieved.ExternalID)
	assert.Equal(t, "registry-42", *retrieved.ExternalID)
	assert.Equal(t, ProvenanceRegistry, retrieved.Provenance)
}

func TestUpdateConnectionParams(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")

	conn := &Connection{
		ProfileID:  p.ID,
		Name:       "local",
		Transport:  TransportStdio,
		EncCommand: strPtr("v1:old-command"),
		EncArgs:    strPtr("v1:old-args"),
	}
	require.NoError(t, s.CreateConnection(ctx, conn))

	conn.Name = "local-renamed"
	conn.EncCommand = strPtr("v1:new-command")
	conn.EncArgs = nil // edit removed the args entirely
	require.NoError(t, s.UpdateConnectionParams(ctx, conn))

	retrieved, err := s.GetConnection(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "local-renamed", retrieved.Name)
	require.NotNil(t, retrieved.EncCommand)
	assert.Equal(t, "v1:new-command", *retrieved.EncCommand)
	assert.Nil(t, retrieved.EncArgs)

	missing := &Connection{ID: "missing-id", Transport: TransportStdio}
	assert.ErrorIs(t, s.UpdateConnectionParams(ctx, missing), ErrNotFound)
}

func TestSetConnectionStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")

	conn := &Connection{ProfileID: p.ID, Name: "toggleme", Transport: TransportSSE}
	require.NoError(t, s.CreateConnection(ctx, conn))

	require.NoError(t, s.SetConnectionStatus(ctx, conn.ID, ConnectionInactive))

	retrieved, err := s.GetConnection(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectionInactive, retrieved.Status)

	assert.ErrorIs(t, s.SetConnectionStatus(ctx, "missing-id", ConnectionActive), ErrNotFound)
}

func TestListConnections_CreationOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateConnection(ctx, &Connection{
			ProfileID: p.ID,
			Name:      name,
			Transport: TransportStdio,
		}))
	}

	conns, err := s.ListConnections(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, conns, 3)
	assert.Equal(t, "first", conns[0].Name)
	assert.Equal(t, "third", conns[2].Name)
}

func TestDeleteConnection_CascadesCapabilities(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := seedProfile(t, s, "project-1")

	conn := &Connection{ProfileID: p.ID, Name: "doomed", Transport: TransportStdio}
	require.NoError(t, s.CreateConnection(ctx, conn))
	require.NoError(t, s.ReplaceCapabilities(ctx, conn.ID, []*Capability{
		{Kind: KindPrompt, Name: "summarize", Enabled: true},
	}))
	require.NoError(t, s.PutInstallRecord(ctx, &InstallRecord{
		ConnectionID: conn.ID,
		Command:      "/tmp/bin/doomed",
		InstallDir:   "/tmp/installs/doomed",
	}))

	require.NoError(t, s.DeleteConnection(ctx, conn.ID))

	_, err := s.GetConnection(ctx, conn.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	caps, err := s.ListConnectionCapabilities(ctx, conn.ID)
	require.NoError(t, err)
	assert.Empty(t, caps)

	_, err = s.GetInstallRecord(ctx, conn.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
