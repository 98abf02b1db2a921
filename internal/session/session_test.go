package session_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuyang-Ding1102/SecondHandPlatform/internal/session"
)

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := session.NewStoreAt(filepath.Join(t.TempDir(), "secondhand", "token"))

	_, ok := store.Token()
	assert.False(t, ok, "fresh store should have no token")

	require.NoError(t, store.Save("jwt-abc"))

	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "jwt-abc", token)

	require.NoError(t, store.Clear())
	_, ok = store.Token()
	assert.False(t, ok)
}

func TestStore_ClearMissingIsNoError(t *testing.T) {
	t.Parallel()

	store := session.NewStoreAt(filepath.Join(t.TempDir(), "token"))
	assert.NoError(t, store.Clear())
}

func TestStore_EmptyFileReportsAbsent(t *testing.T) {
	t.Parallel()

	store := session.NewStoreAt(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, store.Save(""))

	_, ok := store.Token()
	assert.False(t, ok)
}

func TestStatic(t *testing.T) {
	t.Parallel()

	token, ok := session.Static("tok").Token()
	require.True(t, ok)
	assert.Equal(t, "tok", token)

	_, ok = session.Static("").Token()
	assert.False(t, ok)
}
