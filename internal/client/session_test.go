package client

import (
	"os"
	"path/filepath"
	"testing"

	"internboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewSessionStore(path)

	// Nothing stored yet.
	session, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)

	saved := &Session{
		Token: "issued-token",
		User:  &model.User{ID: "u1", UserName: "ivy", Email: "ivy@example.com", Role: model.RoleIntern},
	}
	require.NoError(t, store.Save(saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "issued-token", loaded.Token)
	assert.Equal(t, "ivy", loaded.User.UserName)

	require.NoError(t, store.Clear())
	session, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)

	// Clearing an already-missing file is fine.
	require.NoError(t, store.Clear())
}

func TestSessionLoadIgnoresEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"","user":null}`), 0o600))

	session, err := NewSessionStore(path).Load()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewSessionStore(path).Load()
	assert.Error(t, err)
}
